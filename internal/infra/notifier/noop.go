package notifier

import (
	"context"

	"dispatch/internal/domain/entity"
)

// NoOpNotifier accepts every announcement and sends nothing.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) Announce(context.Context, *entity.Announcement) error {
	return nil
}
