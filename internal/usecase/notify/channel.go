// Package notify fans approved-article announcements out to the delivery
// channels (subscriber email, social post, newsroom Slack) in the background,
// so a slow or failing transport never affects the approving editor.
package notify

import (
	"context"

	"dispatch/internal/domain/entity"
	"dispatch/internal/infra/notifier"
)

// Channel is one delivery route for announcements.
//
// Implementations must be safe for concurrent use and must respect ctx
// cancellation. Retries and rate limits belong to the channel.
type Channel interface {
	// Name is a lowercase identifier used in logs, metrics and health output.
	Name() string
	// IsEnabled reports whether the channel is configured to send.
	IsEnabled() bool
	// Send delivers the announcement.
	Send(ctx context.Context, a *entity.Announcement) error
}

// NotifierChannel adapts an infra notifier to Channel.
type NotifierChannel struct {
	name     string
	enabled  bool
	notifier notifier.Notifier
}

// NewNotifierChannel wraps n. A disabled channel swaps in a no-op notifier.
func NewNotifierChannel(name string, enabled bool, n notifier.Notifier) *NotifierChannel {
	if !enabled || n == nil {
		n = notifier.NewNoOpNotifier()
	}
	return &NotifierChannel{name: name, enabled: enabled, notifier: n}
}

// NewEmailChannel mails subscribers of the article's source.
func NewEmailChannel(cfg notifier.EmailConfig) *NotifierChannel {
	var n notifier.Notifier
	if cfg.Enabled {
		n = notifier.NewEmailNotifier(cfg)
	}
	return NewNotifierChannel("email", cfg.Enabled, n)
}

// NewTwitterChannel is enabled only when all credentials are real.
func NewTwitterChannel(cfg notifier.TwitterConfig) *NotifierChannel {
	var n notifier.Notifier
	enabled := cfg.Configured()
	if enabled {
		n = notifier.NewTwitterNotifier(cfg)
	}
	return NewNotifierChannel("twitter", enabled, n)
}

// NewSlackChannel posts to the newsroom webhook.
func NewSlackChannel(cfg notifier.SlackConfig) *NotifierChannel {
	enabled := cfg.Enabled && cfg.WebhookURL != ""
	var n notifier.Notifier
	if enabled {
		n = notifier.NewSlackNotifier(cfg)
	}
	return NewNotifierChannel("slack", enabled, n)
}

func (c *NotifierChannel) Name() string    { return c.name }
func (c *NotifierChannel) IsEnabled() bool { return c.enabled }

func (c *NotifierChannel) Send(ctx context.Context, a *entity.Announcement) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if a == nil || a.Article == nil {
		return ErrInvalidAnnouncement
	}
	return c.notifier.Announce(ctx, a)
}
