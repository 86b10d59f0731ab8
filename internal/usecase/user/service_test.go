package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain/entity"
	"dispatch/internal/infra/adapter/persistence/sqlstore/sqlstoretest"
	authservice "dispatch/internal/service/auth"
	userUC "dispatch/internal/usecase/user"
)

func newService(t *testing.T) *userUC.Service {
	t.Helper()
	return &userUC.Service{
		Store:  sqlstoretest.New(t),
		Policy: authservice.CredentialRequirements{MinPasswordLength: 8, WeakPasswords: []string{"password"}},
		Hash:   func(pw string) (string, error) { return "hashed:" + pw, nil },
	}
}

func validInput() userUC.RegisterInput {
	return userUC.RegisterInput{
		Username: "rita", Email: "rita@example.com", FirstName: "Rita", LastName: "Reader",
		Role: "reader", Password: "long-enough-pw", PasswordConfirm: "long-enough-pw",
	}
}

func TestRegister(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, entity.RoleReader, u.Role)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, "hashed:long-enough-pw", u.PasswordHash)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rita Reader", got.DisplayName())

	_, err = svc.Register(ctx, validInput())
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestRegister_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*userUC.RegisterInput)
		field  string
	}{
		{"unknown role", func(in *userUC.RegisterInput) { in.Role = "admin" }, "role"},
		{"blank username", func(in *userUC.RegisterInput) { in.Username = " " }, "username"},
		{"bad email", func(in *userUC.RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"mismatch", func(in *userUC.RegisterInput) { in.PasswordConfirm = "different-pw" }, "password_confirm"},
		{"weak", func(in *userUC.RegisterInput) { in.Password, in.PasswordConfirm = "password", "password" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := newService(t).Register(context.Background(), in)
			require.ErrorIs(t, err, entity.ErrInvalidInput)
			var ve *entity.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestMeAndList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Username, in.Email, in.Role = "jane", "jane@example.com", "journalist"
	_, err = svc.Register(ctx, in)
	require.NoError(t, err)

	me, err := svc.Me(ctx, &entity.User{ID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "rita", me.Username)
	_, err = svc.Me(ctx, nil)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	role := entity.RoleJournalist
	journalists, err := svc.List(ctx, &role)
	require.NoError(t, err)
	require.Len(t, journalists, 1)
	assert.Equal(t, "jane", journalists[0].Username)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
