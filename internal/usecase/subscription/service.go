// Package subscription manages a reader's subscriptions to publishers and
// journalists.
package subscription

import (
	"context"
	"fmt"

	"dispatch/internal/domain/entity"
	"dispatch/internal/observability/metrics"
	"dispatch/internal/policy"
	"dispatch/internal/repository"
)

// Service provides the subscription use cases. Only readers subscribe.
type Service struct {
	Store repository.Store
}

// Get returns the reader's current subscription set.
func (s *Service) Get(ctx context.Context, actor *entity.User) (entity.SubscriptionSet, error) {
	if !policy.CanSubscribe(actor) {
		return entity.SubscriptionSet{}, entity.ErrForbidden
	}
	set, err := s.Store.Subscriptions().Get(ctx, actor.ID)
	if err != nil {
		return entity.SubscriptionSet{}, fmt.Errorf("get subscriptions: %w", err)
	}
	return set, nil
}

// checkTarget verifies that the target exists and, for journalists, that the
// user really is a journalist.
func checkTarget(ctx context.Context, tx repository.Store, kind entity.SourceKind, targetID int64) error {
	switch kind {
	case entity.SourcePublisher:
		p, err := tx.Publishers().Get(ctx, targetID)
		if err != nil {
			return err
		}
		if p == nil {
			return entity.ErrNotFound
		}
	case entity.SourceJournalist:
		u, err := tx.Users().Get(ctx, targetID)
		if err != nil {
			return err
		}
		if u == nil {
			return entity.ErrNotFound
		}
		if u.Role != entity.RoleJournalist {
			return &entity.ValidationError{Field: "journalist", Message: "User is not a journalist."}
		}
	default:
		return &entity.ValidationError{Field: "kind", Message: "kind must be publisher or journalist"}
	}
	return nil
}

func (s *Service) set(ctx context.Context, actor *entity.User, kind entity.SourceKind, targetID int64, on bool) error {
	if !policy.CanSubscribe(actor) {
		return entity.ErrForbidden
	}
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		if err := checkTarget(ctx, tx, kind, targetID); err != nil {
			return err
		}
		if on {
			return tx.Subscriptions().Add(ctx, actor.ID, kind, targetID)
		}
		return tx.Subscriptions().Remove(ctx, actor.ID, kind, targetID)
	})
}

// Subscribe adds the target. Subscribing twice has no further effect.
func (s *Service) Subscribe(ctx context.Context, actor *entity.User, kind entity.SourceKind, targetID int64) error {
	if err := s.set(ctx, actor, kind, targetID, true); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	metrics.RecordSubscriptionChange(string(kind), "subscribe")
	return nil
}

// Unsubscribe removes the target. It is a no-op when not subscribed.
func (s *Service) Unsubscribe(ctx context.Context, actor *entity.User, kind entity.SourceKind, targetID int64) error {
	if err := s.set(ctx, actor, kind, targetID, false); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	metrics.RecordSubscriptionChange(string(kind), "unsubscribe")
	return nil
}

// Toggle flips membership of the target and reports whether the reader is
// subscribed afterwards.
func (s *Service) Toggle(ctx context.Context, actor *entity.User, kind entity.SourceKind, targetID int64) (bool, error) {
	if !policy.CanSubscribe(actor) {
		return false, entity.ErrForbidden
	}
	var subscribed bool
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		if err := checkTarget(ctx, tx, kind, targetID); err != nil {
			return err
		}
		set, err := tx.Subscriptions().Get(ctx, actor.ID)
		if err != nil {
			return err
		}
		has := set.HasPublisher(targetID)
		if kind == entity.SourceJournalist {
			has = set.HasJournalist(targetID)
		}
		if has {
			return tx.Subscriptions().Remove(ctx, actor.ID, kind, targetID)
		}
		subscribed = true
		return tx.Subscriptions().Add(ctx, actor.ID, kind, targetID)
	})
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	action := "unsubscribe"
	if subscribed {
		action = "subscribe"
	}
	metrics.RecordSubscriptionChange(string(kind), action)
	return subscribed, nil
}
