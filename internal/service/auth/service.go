// Package auth authenticates users and enforces the password policy. It is
// shared by the REST API, the web pages and the command line tool.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/domain/entity"
)

type Credentials struct {
	Username string
	Password string
}

// AuthProvider checks credentials against one user source.
type AuthProvider interface {
	// Authenticate returns an error matching entity.ErrUnauthorized for bad
	// credentials and any other error for a broken source.
	Authenticate(ctx context.Context, creds Credentials) (*entity.User, error)
	GetRequirements() CredentialRequirements
	Name() string
}

// AuthService is the entry point the login form and the token endpoint share.
type AuthService struct {
	provider AuthProvider
	logger   *slog.Logger
}

func NewAuthService(provider AuthProvider, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{provider: provider, logger: logger.With(slog.String("provider", provider.Name()))}
}

// Authenticate logs rejected usernames at info and source failures at error.
// The password never reaches the log.
func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (*entity.User, error) {
	u, err := s.provider.Authenticate(ctx, creds)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, entity.ErrUnauthorized):
		s.logger.InfoContext(ctx, "login rejected", slog.String("username", creds.Username))
	case !errors.Is(err, context.Canceled):
		s.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
	}
	return nil, err
}

// Requirements is the password policy for new and changed passwords.
func (s *AuthService) Requirements() CredentialRequirements { return s.provider.GetRequirements() }
