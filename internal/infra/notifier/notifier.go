// Package notifier delivers article announcements over external transports:
// SMTP email to subscribers, a post on the social network, and a message in
// the newsroom Slack channel.
//
// Every notifier rate-limits itself and retries transient failures. Callers
// choose a notifier through the Notifier interface, and NoOpNotifier stands
// in for disabled transports.
package notifier

import (
	"context"

	"dispatch/internal/domain/entity"
)

// Notifier sends one announcement over one transport.
type Notifier interface {
	// Announce delivers the announcement. It returns an error only after the
	// transport's retry policy is exhausted.
	Announce(ctx context.Context, a *entity.Announcement) error
}
