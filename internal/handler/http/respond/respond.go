// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling with sanitization to prevent leaking sensitive information.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"dispatch/internal/domain/entity"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the given status code and error message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError sanitizes error messages before returning them to users.
// Internal errors are returned as "internal server error" and logged.
// Validation-style messages are returned as-is.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	safeErrors := []string{
		"required",
		"invalid",
		"not found",
		"already exists",
		"must be",
		"cannot be",
		"too long",
		"too short",
	}

	isSafe := false
	lowerMsg := strings.ToLower(msg)
	for _, safe := range safeErrors {
		if strings.Contains(lowerMsg, safe) {
			isSafe = true
			break
		}
	}
	if code >= 500 {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // shown to users
	Err     error  // logged only
	Code    int
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeErrorV2 handles errors with AppError support.
// An AppError yields its user message; anything else falls back to SafeError.
func SafeErrorV2(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil && appErr.Code >= 500 {
			slog.Default().Error("application error",
				slog.String("status", http.StatusText(appErr.Code)),
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.UserMsg})
		return
	}
	SafeError(w, code, err)
}

// Field-level validation failures carry the offending field.
type fieldError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Messages returned for domain sentinels.
const (
	MsgAlreadyApproved = "Article is already approved."
	MsgOnlyReaders     = "Only readers can access subscribed articles"
	MsgForbidden       = "You do not have permission to perform this action."
	MsgUnauthorized    = "Authentication credentials were not provided."
	MsgNotFound        = "Not found."
	MsgConflict        = "A record with these details already exists."
)

// DomainError maps a use case error onto an HTTP status. authenticated
// decides whether a permission failure is reported as 403 or 401.
func DomainError(w http.ResponseWriter, err error, authenticated bool) {
	if err == nil {
		return
	}

	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		JSON(w, http.StatusBadRequest, fieldError{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, entity.ErrAlreadyApproved):
		SafeErrorV2(w, 0, NewAppError(http.StatusBadRequest, MsgAlreadyApproved, err))
	case errors.Is(err, entity.ErrOnlyReaders):
		SafeErrorV2(w, 0, NewAppError(http.StatusBadRequest, MsgOnlyReaders, err))
	case errors.Is(err, entity.ErrInvalidInput):
		SafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, entity.ErrNotFound):
		SafeErrorV2(w, 0, NewAppError(http.StatusNotFound, MsgNotFound, err))
	case errors.Is(err, entity.ErrUnauthorized):
		SafeErrorV2(w, 0, NewAppError(http.StatusUnauthorized, MsgUnauthorized, err))
	case errors.Is(err, entity.ErrForbidden):
		if !authenticated {
			SafeErrorV2(w, 0, NewAppError(http.StatusUnauthorized, MsgUnauthorized, err))
			return
		}
		SafeErrorV2(w, 0, NewAppError(http.StatusForbidden, MsgForbidden, err))
	case errors.Is(err, entity.ErrConflict):
		SafeErrorV2(w, 0, NewAppError(http.StatusConflict, MsgConflict, err))
	default:
		SafeError(w, http.StatusInternalServerError, err)
	}
}

// DecodeJSON reads a JSON request body into v. Unknown fields are ignored,
// so read-only fields sent by clients have no effect.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &entity.ValidationError{Field: "body", Message: "request body too large"}
		}
		return &entity.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	return nil
}
