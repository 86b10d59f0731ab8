package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"dispatch/internal/infra/notifier"
	pkgconfig "dispatch/pkg/config"
)

// NotifyConfig configures the approval notification channels.
type NotifyConfig struct {
	Email   notifier.EmailConfig
	Twitter notifier.TwitterConfig
	Slack   notifier.SlackConfig
	// MaxConcurrent bounds in-flight announcements. Default: 10
	MaxConcurrent int
	// Warnings lists settings that were ignored, for the caller to log.
	Warnings []string
}

// LoadNotifyConfig reads the channel settings from the environment.
//
// Email is enabled when EMAIL_HOST is set unless EMAIL_ENABLED=false. Twitter
// is enabled only when all four credentials are real. Slack needs
// SLACK_ENABLED=true and an https://hooks.slack.com/services/ webhook; an
// invalid webhook disables the channel with a warning instead of failing.
func LoadNotifyConfig() (*NotifyConfig, error) {
	timeout := pkgconfig.GetEnvDuration("NOTIFY_TIMEOUT", 30*time.Second)
	host := os.Getenv("EMAIL_HOST")

	cfg := &NotifyConfig{
		Email: notifier.EmailConfig{
			Enabled:  pkgconfig.GetEnvBool("EMAIL_ENABLED", host != ""),
			Host:     host,
			Port:     pkgconfig.GetEnvInt("EMAIL_PORT", 587),
			Username: os.Getenv("EMAIL_HOST_USER"),
			Password: os.Getenv("EMAIL_HOST_PASSWORD"),
			From:     pkgconfig.GetEnvString("DEFAULT_FROM_EMAIL", notifier.DefaultFromEmail),
			Timeout:  timeout,
		},
		Twitter: notifier.TwitterConfig{
			APIKey:            os.Getenv("TWITTER_API_KEY"),
			APISecret:         os.Getenv("TWITTER_API_SECRET"),
			AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
			AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
			Timeout:           timeout,
		},
		Slack: notifier.SlackConfig{
			Enabled:    pkgconfig.GetEnvBool("SLACK_ENABLED", false),
			WebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			SiteURL:    strings.TrimRight(os.Getenv("SITE_URL"), "/"),
			Timeout:    timeout,
		},
		MaxConcurrent: pkgconfig.GetEnvInt("NOTIFY_MAX_CONCURRENT", 10),
	}

	if cfg.Slack.Enabled {
		if err := validateSlackWebhook(cfg.Slack.WebhookURL); err != nil {
			cfg.Warnings = append(cfg.Warnings, "slack disabled: "+err.Error())
			cfg.Slack.Enabled = false
		}
	}
	tw := cfg.Twitter
	if !tw.Configured() && tw.APIKey+tw.APISecret+tw.AccessToken+tw.AccessTokenSecret != "" {
		cfg.Warnings = append(cfg.Warnings, "twitter disabled: credentials incomplete or placeholders")
	}
	if cfg.Email.Enabled && cfg.Email.Host == "" {
		cfg.Warnings = append(cfg.Warnings, "email disabled: EMAIL_HOST is empty")
		cfg.Email.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid notify configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the numeric settings.
func (c *NotifyConfig) Validate() error {
	if c.MaxConcurrent < 1 || c.MaxConcurrent > 100 {
		return fmt.Errorf("NOTIFY_MAX_CONCURRENT must be between 1 and 100, got %d", c.MaxConcurrent)
	}
	if c.Email.Enabled && (c.Email.Port < 1 || c.Email.Port > 65535) {
		return fmt.Errorf("EMAIL_PORT must be a valid port, got %d", c.Email.Port)
	}
	if c.Email.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive")
	}
	return nil
}

func validateSlackWebhook(raw string) error {
	if raw == "" {
		return fmt.Errorf("SLACK_WEBHOOK_URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("SLACK_WEBHOOK_URL is malformed")
	}
	if u.Scheme != "https" {
		return fmt.Errorf("SLACK_WEBHOOK_URL must use https")
	}
	if u.Host != "hooks.slack.com" || !strings.HasPrefix(u.Path, "/services/") {
		return fmt.Errorf("SLACK_WEBHOOK_URL is not a Slack incoming webhook")
	}
	return nil
}
