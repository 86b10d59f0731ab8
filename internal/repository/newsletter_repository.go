package repository

import (
	"context"

	"dispatch/internal/domain/entity"
)

// NewsletterFilter narrows newsletter lists.
type NewsletterFilter struct {
	AuthorID *int64
}

type NewsletterRepository interface {
	List(ctx context.Context, filter NewsletterFilter) ([]*entity.Newsletter, error)
	// Get returns (nil, nil) if the newsletter is not found.
	Get(ctx context.Context, id int64) (*entity.Newsletter, error)
	// Create inserts the newsletter and its article set.
	Create(ctx context.Context, newsletter *entity.Newsletter) error
	// Update replaces the newsletter fields and its article set.
	Update(ctx context.Context, newsletter *entity.Newsletter) error
	Delete(ctx context.Context, id int64) error
}
