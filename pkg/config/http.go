package config

import (
	"fmt"
	"time"

	envcfg "dispatch/internal/pkg/config"
)

// HTTPConfig holds the listener hardening knobs shared by the API and the
// web pages.
type HTTPConfig struct {
	// TrustedProxies are CIDRs whose X-Forwarded-For header is honoured.
	TrustedProxies []string
	// LoginInterval and LoginBurst throttle POST /login and POST /auth/token
	// per client address: one attempt per interval after the burst.
	LoginInterval time.Duration
	LoginBurst    int
	SweepInterval time.Duration
	CSPEnabled    bool
	CSPReportOnly bool
	// TraceSampleRatio is the fraction of root spans recorded, 0 to 1.
	TraceSampleRatio float64
}

// LoadHTTPConfig reads TRUSTED_PROXIES, LOGIN_RATE_INTERVAL, LOGIN_RATE_BURST,
// RATELIMIT_SWEEP_INTERVAL, CSP_ENABLED, CSP_REPORT_ONLY and
// TRACE_SAMPLE_PERCENT.
func LoadHTTPConfig() (*HTTPConfig, error) {
	cfg := &HTTPConfig{
		TrustedProxies: GetEnvStringList("TRUSTED_PROXIES", nil),
		LoginInterval:  GetEnvDuration("LOGIN_RATE_INTERVAL", 12*time.Second),
		LoginBurst:     GetEnvInt("LOGIN_RATE_BURST", 5),
		SweepInterval:  GetEnvDuration("RATELIMIT_SWEEP_INTERVAL", 5*time.Minute),
		CSPEnabled:     GetEnvBool("CSP_ENABLED", true),
		CSPReportOnly:  GetEnvBool("CSP_REPORT_ONLY", false),
	}
	cfg.TraceSampleRatio = float64(GetEnvInt("TRACE_SAMPLE_PERCENT", 100)) / 100

	if err := envcfg.ValidateDuration(cfg.LoginInterval, time.Second, time.Hour); err != nil {
		return nil, fmt.Errorf("LOGIN_RATE_INTERVAL: %w", err)
	}
	if cfg.LoginBurst < 1 {
		return nil, fmt.Errorf("LOGIN_RATE_BURST must be at least 1, got %d", cfg.LoginBurst)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("RATELIMIT_SWEEP_INTERVAL must be positive, got %v", cfg.SweepInterval)
	}
	if cfg.TraceSampleRatio < 0 || cfg.TraceSampleRatio > 1 {
		return nil, fmt.Errorf("TRACE_SAMPLE_PERCENT must be between 0 and 100")
	}
	return cfg, nil
}
