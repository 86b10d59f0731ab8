package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/respond"
)

type ctxKey string

const ctxUser ctxKey = "user"

// UserLookup loads the account behind a token.
type UserLookup interface {
	// Get returns (nil, nil) when the user does not exist.
	Get(ctx context.Context, id int64) (*entity.User, error)
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *entity.User {
	u, _ := ctx.Value(ctxUser).(*entity.User)
	return u
}

// Authz authenticates API requests.
//
//  1. Public endpoints pass through untouched.
//  2. A bearer token must verify and belong to an active user, else 401.
//  3. Without a token, GET on a public-read endpoint continues anonymously.
//     Anything else is 401.
//
// Permission checks happen later, in the use cases.
func Authz(issuer *TokenIssuer, users UserLookup, endpoints Endpoints) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			defer recordAuthz(start)

			if endpoints.IsPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				if endpoints.IsPublicRead(r.Method, r.URL.Path) {
					next.ServeHTTP(w, r)
					return
				}
				unauthorized(w, errors.New("missing bearer token"))
				return
			}

			u, err := authenticate(r.Context(), header, issuer, users)
			if err != nil {
				if errors.Is(err, entity.ErrUnauthorized) {
					unauthorized(w, err)
					return
				}
				respond.SafeError(w, http.StatusInternalServerError, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func authenticate(ctx context.Context, header string, issuer *TokenIssuer, users UserLookup) (*entity.User, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, ErrInvalidToken
	}
	claims, err := issuer.Parse(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
	if err != nil {
		return nil, err
	}
	u, err := users.Get(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	// tokens outlive deactivation and renames; the store has the last word
	if u == nil || !u.IsActive || u.Username != claims.Subject {
		return nil, ErrInvalidToken
	}
	return u, nil
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="dispatch"`)
	respond.SafeErrorV2(w, http.StatusUnauthorized,
		respond.NewAppError(http.StatusUnauthorized, respond.MsgUnauthorized, err))
}

// Fail writes a use case error. Permission failures are counted and
// answered with 403, or 401 when the caller is anonymous.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	u := UserFromContext(r.Context())
	if errors.Is(err, entity.ErrForbidden) {
		role := "anonymous"
		if u != nil {
			role = string(u.Role)
		}
		recordForbidden(role, r.Method)
	}
	respond.DomainError(w, err, u != nil)
}
