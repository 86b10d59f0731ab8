package repository

import (
	"context"

	"dispatch/internal/domain/entity"
)

type SubscriptionRepository interface {
	// Get returns the reader's subscription set.
	Get(ctx context.Context, readerID int64) (entity.SubscriptionSet, error)
	// Add is a no-op when the subscription already exists.
	Add(ctx context.Context, readerID int64, kind entity.SourceKind, targetID int64) error
	// Remove is a no-op when the subscription does not exist.
	Remove(ctx context.Context, readerID int64, kind entity.SourceKind, targetID int64) error
	// Subscribers returns active readers with an email address subscribed to the source.
	Subscribers(ctx context.Context, kind entity.SourceKind, targetID int64) ([]*entity.User, error)
}
