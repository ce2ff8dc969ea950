// Package common defines shared constants and sentinel errors used across
// the taskkeeper server layers. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors. ErrPersistence wraps storage failures that
	// are not otherwise classified.
	ErrorNotFound  = errors.New("not found")
	ErrPersistence = errors.New("db error")

	// Input errors.
	ErrValidation          = errors.New("validation error")
	ErrInvalidUpdateFields = errors.New("invalid updates")
	ErrDuplicateEmail      = errors.New("email already registered")

	// Credential errors. Unknown email and wrong password share one value.
	ErrInvalidCredentials = errors.New("unable to login")

	// Auth gate errors.
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError describes a single rejected input field.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is reports ErrValidation as the error kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
