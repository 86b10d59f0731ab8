package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/requestid"
	"dispatch/internal/handler/http/respond"
	authservice "dispatch/internal/service/auth"
)

// Authenticator verifies a username and password.
type Authenticator interface {
	Authenticate(ctx context.Context, creds authservice.Credentials) (*entity.User, error)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenHandler exchanges a username and password for a signed token.
//
// @Summary      Obtain a JWT access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "credentials"
// @Success      200 {object} tokenResponse
// @Failure      400 {object} map[string]string
// @Failure      401 {object} map[string]string
// @Failure      429 {object} map[string]string
// @Router       /auth/token [post]
func TokenHandler(authn Authenticator, issuer *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := slog.With(slog.String("request_id", requestid.FromContext(r.Context())))

		fail := func(code int, reason string, err error) {
			logger.Warn("authentication failed",
				slog.String("reason", reason),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			recordToken("unknown", reason, start)
			respond.SafeErrorV2(w, code, err)
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(http.StatusBadRequest, "invalid_request",
				respond.NewAppError(http.StatusBadRequest, "invalid request body", err))
			return
		}
		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			fail(http.StatusBadRequest, "missing_fields",
				respond.NewAppError(http.StatusBadRequest, "username and password are required", nil))
			return
		}

		u, err := authn.Authenticate(r.Context(), authservice.Credentials{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			if errors.Is(err, entity.ErrUnauthorized) {
				fail(http.StatusUnauthorized, "invalid_credentials",
					respond.NewAppError(http.StatusUnauthorized, "invalid credentials", nil))
				return
			}
			fail(http.StatusInternalServerError, "provider_error", err)
			return
		}

		token, exp, err := issuer.Issue(u)
		if err != nil {
			fail(http.StatusInternalServerError, "token_signing", err)
			return
		}

		role := string(u.Role)
		recordToken(role, outcomeIssued, start)
		logger.Info("token issued",
			slog.Int64("user_id", u.ID),
			slog.String("role", role),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))

		respond.JSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp.UTC()})
	}
}
