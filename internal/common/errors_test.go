package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsErrValidation(t *testing.T) {
	err := NewValidationError("email", "is invalid")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrInvalidUpdateFields))
	assert.Equal(t, "email: is invalid", err.Error())
}

func TestValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("register: %w", NewValidationError("password", "must be at least %d characters", 7))

	var ve *ValidationError
	if assert.True(t, errors.As(err, &ve)) {
		assert.Equal(t, "password", ve.Field)
		assert.Equal(t, "must be at least 7 characters", ve.Message)
	}
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestValidationError_NoField(t *testing.T) {
	err := NewValidationError("", "body is not valid JSON")
	assert.Equal(t, "body is not valid JSON", err.Error())
}

func TestErrPersistence_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("%w: %w", ErrPersistence, cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "db error: connection refused", err.Error())
}
