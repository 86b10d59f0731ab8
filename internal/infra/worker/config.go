package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/pkg/config"
)

// WorkerConfig controls the review digest job.
//
// Environment variables:
//   - DIGEST_CRON_SCHEDULE: cron expression (default "0 7 * * *")
//   - DIGEST_TIMEZONE: IANA timezone name (default "UTC")
//   - DIGEST_TIMEOUT: duration, 10s-30m (default 5m)
//   - DIGEST_MAX_ITEMS: articles listed per digest, 1-200 (default 20)
//   - WORKER_HEALTH_PORT: 1024-65535 (default 9091)
//   - WORKER_METRICS_PORT: 1024-65535 (default 9090)
type WorkerConfig struct {
	CronSchedule  string
	Timezone      string
	DigestTimeout time.Duration
	MaxItems      int
	HealthPort    int
	MetricsPort   int
}

// DefaultConfig returns the production defaults: one digest a day at 07:00 UTC.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "0 7 * * *",
		Timezone:      "UTC",
		DigestTimeout: 5 * time.Minute,
		MaxItems:      20,
		HealthPort:    9091,
		MetricsPort:   9090,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.DigestTimeout, 10*time.Second, 30*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("digest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxItems, 1, 200); err != nil {
		errs = append(errs, fmt.Errorf("max items: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, errors.New("health and metrics ports must differ"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv reads the worker configuration. An invalid value falls
// back to its default with a warning and a metric, so the error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	note := func(field, metricField string, fallback bool, warning string) {
		if !fallback {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(metricField)
		metrics.RecordFallback(metricField, "default")
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.EnvString("DIGEST_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	note("CronSchedule", "cron_schedule", schedule.FallbackApplied, schedule.Warning)

	tz := config.EnvString("DIGEST_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = tz.Value
	note("Timezone", "timezone", tz.FallbackApplied, tz.Warning)

	timeout := config.EnvDuration("DIGEST_TIMEOUT", cfg.DigestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
	})
	cfg.DigestTimeout = timeout.Value
	note("DigestTimeout", "digest_timeout", timeout.FallbackApplied, timeout.Warning)

	maxItems := config.EnvInt("DIGEST_MAX_ITEMS", cfg.MaxItems, func(v int) error {
		return config.ValidateIntRange(v, 1, 200)
	})
	cfg.MaxItems = maxItems.Value
	note("MaxItems", "max_items", maxItems.FallbackApplied, maxItems.Warning)

	port := func(v int) error { return config.ValidateIntRange(v, 1024, 65535) }

	health := config.EnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, port)
	cfg.HealthPort = health.Value
	note("HealthPort", "health_port", health.FallbackApplied, health.Warning)

	metricsPort := config.EnvInt("WORKER_METRICS_PORT", cfg.MetricsPort, port)
	cfg.MetricsPort = metricsPort.Value
	note("MetricsPort", "metrics_port", metricsPort.FallbackApplied, metricsPort.Warning)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()
	return &cfg, nil
}
