package domain

import (
	"errors"
	"strings"
)

// Location errors.
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingPayload   = errors.New("request body is required")
	ErrInvalidID        = errors.New("invalid location id")
	ErrIDMismatch       = errors.New("path id does not match payload id")
	ErrConflict         = errors.New("location conflicts with an existing record")
)

// Store errors.
var (
	// ErrNoChanges is returned by a mutator whose commit persisted nothing.
	ErrNoChanges = errors.New("no changes persisted")
	ErrNotFound  = errors.New("record not found")
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUnknownRole        = errors.New("unknown role")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrForbidden          = errors.New("access forbidden")
)

// ValidationError carries the field-level problems found in a payload.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	return strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsClientError reports whether err stems from caller input rather than the store.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingPayload) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrIDMismatch)
}
