package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates that the acting user lacks the capability for the operation
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized indicates missing or invalid credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a uniqueness violation (username, email, publisher name)
	ErrConflict = errors.New("conflict")

	// ErrAlreadyApproved is returned when approving or rejecting an approved article
	ErrAlreadyApproved = errors.New("article is already approved")

	// ErrOnlyReaders is returned for reader-only operations invoked by other roles
	ErrOnlyReaders = errors.New("only readers can perform this operation")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and matches ErrInvalidInput via errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is reports ErrInvalidInput as a match so callers can branch on the sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
