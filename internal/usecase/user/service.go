// Package user implements registration and read-only user profiles.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/observability/metrics"
	"dispatch/internal/repository"
	authservice "dispatch/internal/service/auth"
)

// ErrInvalidUserID is returned for non-positive ids.
var ErrInvalidUserID = fmt.Errorf("invalid user ID: %w", entity.ErrInvalidInput)

// Service provides the user use cases.
type Service struct {
	Store  repository.Store
	Policy authservice.CredentialRequirements
	Now    func() time.Time
	// Hash defaults to authservice.HashPassword.
	Hash func(password string) (string, error)
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Role            string
	Password        string
	PasswordConfirm string
	// IsAdmin is only set by the command line tool.
	IsAdmin bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register validates the form and creates an active account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      role,
		IsActive:  true,
		IsAdmin:   in.IsAdmin,
		CreatedAt: s.now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if in.Password != in.PasswordConfirm {
		return nil, &entity.ValidationError{Field: "password_confirm", Message: "The two password fields didn't match."}
	}
	if err := s.Policy.CheckPassword(in.Password); err != nil {
		return nil, err
	}

	hash := s.Hash
	if hash == nil {
		hash = authservice.HashPassword
	}
	u.PasswordHash, err = hash(in.Password)
	if err != nil {
		return nil, err
	}

	err = s.Store.WithinTx(ctx, func(tx repository.Store) error {
		taken, err := tx.Users().Exists(ctx, u.Username, u.Email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("username or email already registered: %w", entity.ErrConflict)
		}
		return tx.Users().Create(ctx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	metrics.RecordRegistration(string(u.Role))
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}
	u, err := s.Store.Users().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, entity.ErrNotFound
	}
	return u, nil
}

// Me returns the calling user's current profile.
func (s *Service) Me(ctx context.Context, actor *entity.User) (*entity.User, error) {
	if actor == nil {
		return nil, entity.ErrUnauthorized
	}
	return s.Get(ctx, actor.ID)
}

// List returns users, optionally restricted to one role.
func (s *Service) List(ctx context.Context, role *entity.Role) ([]*entity.User, error) {
	list, err := s.Store.Users().List(ctx, repository.UserFilter{Role: role})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}
