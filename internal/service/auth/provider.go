package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and
// inactive accounts alike.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", entity.ErrUnauthorized)

// dummyHash is compared against when the user does not exist so that
// unknown usernames take as long as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dispatch-timing-equalizer"), bcrypt.DefaultCost)

// StoreProvider authenticates against the users table.
type StoreProvider struct {
	users        repository.UserRepository
	requirements CredentialRequirements
}

// NewStoreProvider creates a provider over the user repository.
func NewStoreProvider(users repository.UserRepository, requirements CredentialRequirements) *StoreProvider {
	return &StoreProvider{users: users, requirements: requirements}
}

// Authenticate looks the user up by username and checks the bcrypt hash.
func (p *StoreProvider) Authenticate(ctx context.Context, creds Credentials) (*entity.User, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := p.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("Authenticate: %w", err)
	}
	if u == nil || !u.IsActive {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(creds.Password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetRequirements returns the password requirements.
func (p *StoreProvider) GetRequirements() CredentialRequirements {
	return p.requirements
}

// Name returns the provider name.
func (p *StoreProvider) Name() string {
	return "store"
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
