package services

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 7
	// bcrypt ignores input past 72 bytes; longer passwords are refused.
	maxPasswordBytes = 72
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail expects an already normalized address and accepts only a
// bare addr-spec ("a@b.c"), not a display-name form.
func validateEmail(email string) error {
	if email == "" {
		return common.NewValidationError("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return common.NewValidationError("email", "is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return common.NewValidationError("password", "must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return common.NewValidationError("password", "must be at most %d bytes", maxPasswordBytes)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return common.NewValidationError("password", `cannot contain "password"`)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("name", "is required")
	}
	return name, nil
}

func validateAge(age int) error {
	if age < 0 {
		return common.NewValidationError("age", "must be a positive number")
	}
	return nil
}

func normalizeDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", common.NewValidationError("description", "is required")
	}
	return description, nil
}

// isUUID reports whether id can name a stored row at all. Anything else
// is treated as not found without touching the database.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
