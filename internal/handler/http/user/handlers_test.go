package user_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/user"
	"dispatch/internal/infra/adapter/persistence/sqlstore/sqlstoretest"
	userUC "dispatch/internal/usecase/user"
)

func TestUserEndpoints(t *testing.T) {
	s := sqlstoretest.New(t)
	jane := sqlstoretest.User(t, s, "jane", entity.RoleJournalist)
	sqlstoretest.User(t, s, "rita", entity.RoleReader)

	mux := http.NewServeMux()
	user.Register(mux, &userUC.Service{Store: s})

	get := func(u *entity.User, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if u != nil {
			req = req.WithContext(auth.WithUser(req.Context(), u))
		}
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	tests := []struct {
		name     string
		caller   *entity.User
		path     string
		wantCode int
		contains string
	}{
		{"list by role", jane, "/users?role=reader", http.StatusOK, `"username":"rita"`},
		{"unknown role", jane, "/users?role=admin", http.StatusBadRequest, `"field":"role"`},
		{"detail", jane, fmt.Sprintf("/users/%d", jane.ID), http.StatusOK, `"display_name":"jane"`},
		{"missing", jane, "/users/999", http.StatusNotFound, ""},
		{"bad id", jane, "/users/x", http.StatusBadRequest, ""},
		{"me", jane, "/users/me", http.StatusOK, `"email":"jane@example.com"`},
		{"me anonymous", nil, "/users/me", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(tt.caller, tt.path)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), tt.contains)
			assert.NotContains(t, rr.Body.String(), "password")
		})
	}
}
