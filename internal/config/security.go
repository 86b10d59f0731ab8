package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SecurityConfig represents security configuration.
type SecurityConfig struct {
	Security struct {
		Auth struct {
			Provider string `yaml:"provider"`
			Password struct {
				MinLength     int      `yaml:"min_length"`
				WeakPasswords []string `yaml:"weak_passwords"`
			} `yaml:"password"`
		} `yaml:"auth"`
		PublicEndpoints []string `yaml:"public_endpoints"`
		// PublicReadEndpoints accept anonymous GET requests; visitors see approved content only.
		PublicReadEndpoints []string `yaml:"public_read_endpoints"`
		JWT                 struct {
			SecretEnv   string `yaml:"secret_env"`
			ExpiryHours int    `yaml:"expiry_hours"`
		} `yaml:"jwt"`
	} `yaml:"security"`
}

// DefaultSecurityConfig is used when no SECURITY_CONFIG file is given.
func DefaultSecurityConfig() *SecurityConfig {
	var c SecurityConfig
	c.Security.Auth.Provider = "store"
	c.Security.Auth.Password.MinLength = 8
	c.Security.Auth.Password.WeakPasswords = []string{
		"password", "12345678", "qwerty", "letmein", "welcome", "admin123", "iloveyou",
	}
	c.Security.PublicEndpoints = []string{"/health", "/ready", "/live", "/metrics", "/auth/token"}
	c.Security.PublicReadEndpoints = []string{"/articles", "/newsletters", "/publishers"}
	c.Security.JWT.SecretEnv = "JWT_SECRET"
	c.Security.JWT.ExpiryHours = 24
	return &c
}

// LoadSecurityConfig loads security configuration from YAML file.
// The path parameter is expected to come from a trusted source (command-line argument or environment).
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	// #nosec G304 -- path is provided by trusted source, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultSecurityConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateSecurityConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// LoadSecurityConfigOrDefault loads path, or returns the defaults when path is empty.
func LoadSecurityConfigOrDefault(path string) (*SecurityConfig, error) {
	if path == "" {
		return DefaultSecurityConfig(), nil
	}
	return LoadSecurityConfig(path)
}

func validateSecurityConfig(config *SecurityConfig) error {
	if config.Security.Auth.Provider != "store" {
		return fmt.Errorf("unsupported auth provider %q", config.Security.Auth.Provider)
	}

	if config.Security.Auth.Password.MinLength < 8 {
		return fmt.Errorf("password min_length must be at least 8")
	}

	if config.Security.JWT.SecretEnv == "" {
		return fmt.Errorf("jwt secret_env is required")
	}

	if config.Security.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("jwt expiry_hours must be positive")
	}

	return nil
}

// GetMinPasswordLength returns the minimum password length requirement.
func (c *SecurityConfig) GetMinPasswordLength() int {
	return c.Security.Auth.Password.MinLength
}

// GetWeakPasswords returns the list of weak passwords.
func (c *SecurityConfig) GetWeakPasswords() []string {
	return c.Security.Auth.Password.WeakPasswords
}

// GetPublicEndpoints returns the list of public endpoints.
func (c *SecurityConfig) GetPublicEndpoints() []string {
	return c.Security.PublicEndpoints
}

// GetPublicReadEndpoints returns the endpoints open to anonymous GET requests.
func (c *SecurityConfig) GetPublicReadEndpoints() []string {
	return c.Security.PublicReadEndpoints
}

// GetJWTSecretEnv returns the environment variable name for JWT secret.
func (c *SecurityConfig) GetJWTSecretEnv() string {
	return c.Security.JWT.SecretEnv
}

// GetJWTExpiry returns the token lifetime.
func (c *SecurityConfig) GetJWTExpiry() time.Duration {
	return time.Duration(c.Security.JWT.ExpiryHours) * time.Hour
}
