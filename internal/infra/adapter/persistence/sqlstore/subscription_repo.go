package sqlstore

import (
	"context"
	"fmt"

	"dispatch/internal/domain/entity"
)

// SubscriptionRepo implements repository.SubscriptionRepository.
type SubscriptionRepo struct{ conn }

// subscriptionTable returns the join table and its target column for kind.
func subscriptionTable(kind entity.SourceKind) (table, column string, err error) {
	switch kind {
	case entity.SourcePublisher:
		return "reader_publisher_subscriptions", "publisher_id", nil
	case entity.SourceJournalist:
		return "reader_journalist_subscriptions", "journalist_id", nil
	}
	return "", "", &entity.ValidationError{Field: "kind", Message: "subscription kind must be publisher or journalist"}
}

func (repo *SubscriptionRepo) Get(ctx context.Context, readerID int64) (entity.SubscriptionSet, error) {
	var set entity.SubscriptionSet
	for _, kind := range []entity.SourceKind{entity.SourcePublisher, entity.SourceJournalist} {
		table, column, _ := subscriptionTable(kind)
		query := `SELECT ` + column + ` FROM ` + table + ` WHERE reader_id = ? ORDER BY ` + column
		rows, err := repo.query(ctx, query, readerID)
		if err != nil {
			return set, fmt.Errorf("Get: %w", err)
		}
		ids, err := collectIDs(rows)
		if err != nil {
			return set, fmt.Errorf("Get: %w", err)
		}
		if kind == entity.SourcePublisher {
			set.PublisherIDs = ids
		} else {
			set.JournalistIDs = ids
		}
	}
	return set, nil
}

func (repo *SubscriptionRepo) Add(ctx context.Context, readerID int64, kind entity.SourceKind, targetID int64) error {
	table, column, err := subscriptionTable(kind)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + table + ` (reader_id, ` + column + `) VALUES (?, ?) ON CONFLICT DO NOTHING`
	if _, err := repo.exec(ctx, query, readerID, targetID); err != nil {
		return fmt.Errorf("Add: %w", err)
	}
	return nil
}

func (repo *SubscriptionRepo) Remove(ctx context.Context, readerID int64, kind entity.SourceKind, targetID int64) error {
	table, column, err := subscriptionTable(kind)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + table + ` WHERE reader_id = ? AND ` + column + ` = ?`
	if _, err := repo.exec(ctx, query, readerID, targetID); err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	return nil
}

// Subscribers returns active readers with an email address subscribed to the source.
func (repo *SubscriptionRepo) Subscribers(ctx context.Context, kind entity.SourceKind, targetID int64) ([]*entity.User, error) {
	table, column, err := subscriptionTable(kind)
	if err != nil {
		return nil, err
	}
	query := `
SELECT ` + userColumns + `
FROM users u
JOIN ` + table + ` s ON s.reader_id = u.id
WHERE s.` + column + ` = ? AND u.role = 'reader' AND u.is_active = TRUE AND u.email <> ''
ORDER BY u.id`
	rows, err := repo.query(ctx, query, targetID)
	if err != nil {
		return nil, fmt.Errorf("Subscribers: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("Subscribers: %w", err)
	}
	return users, nil
}
