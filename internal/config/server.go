package config

import (
	"fmt"
	"time"

	pkgconfig "dispatch/pkg/config"
)

// ServerConfig holds the API and web listener settings.
type ServerConfig struct {
	Port            int
	SessionLifetime time.Duration
	// SessionIdle logs a web user out after this much inactivity; 0 disables it.
	SessionIdle    time.Duration
	SecureCookie   bool
	RequestTimeout time.Duration
}

// LoadServerConfig reads PORT, SESSION_LIFETIME, SESSION_IDLE_TIMEOUT,
// SESSION_SECURE_COOKIE and REQUEST_TIMEOUT.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:            pkgconfig.GetEnvInt("PORT", 8080),
		SessionLifetime: pkgconfig.GetEnvDuration("SESSION_LIFETIME", 14*24*time.Hour),
		SessionIdle:     pkgconfig.GetEnvDuration("SESSION_IDLE_TIMEOUT", 0),
		SecureCookie:    pkgconfig.GetEnvBool("SESSION_SECURE_COOKIE", true),
		RequestTimeout:  pkgconfig.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be a valid port, got %d", cfg.Port)
	}
	if cfg.SessionLifetime < time.Minute {
		return nil, fmt.Errorf("SESSION_LIFETIME must be at least one minute")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return cfg, nil
}

// Addr is the listen address for the configured port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
