package repository

import (
	"context"

	"dispatch/internal/domain/entity"
)

// UserFilter narrows user lists.
type UserFilter struct {
	Role *entity.Role
}

type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	// Get returns (nil, nil) if the user is not found.
	Get(ctx context.Context, id int64) (*entity.User, error)
	// GetByUsername returns (nil, nil) if the user is not found.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// Exists reports whether the username or a non-empty email is taken.
	Exists(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
}
