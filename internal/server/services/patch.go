package services

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

var (
	taskPatchFields = map[string]struct{}{"description": {}, "completed": {}}
	userPatchFields = map[string]struct{}{"name": {}, "email": {}, "password": {}, "age": {}}
)

// checkAllowed rejects the whole patch if any key is outside allowed.
func checkAllowed(raw map[string]json.RawMessage, allowed map[string]struct{}) error {
	for k := range raw {
		if _, ok := allowed[k]; !ok {
			return common.ErrInvalidUpdateFields
		}
	}
	return nil
}

// decodeField unmarshals one patch value into dst. JSON null is rejected
// rather than decoded into the zero value.
func decodeField(v json.RawMessage, field string, dst any, kind string) error {
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return common.NewValidationError(field, "must not be null")
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return common.NewValidationError(field, "must be %s", kind)
	}
	return nil
}

// TaskPatch is a validated partial update of a task. Nil fields are left
// unchanged.
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// DecodeTaskPatch checks the keys against the task allow-list, then decodes
// and validates each present field. Nothing is applied on error.
func DecodeTaskPatch(raw map[string]json.RawMessage) (*TaskPatch, error) {
	if err := checkAllowed(raw, taskPatchFields); err != nil {
		return nil, err
	}

	p := &TaskPatch{}
	if v, ok := raw["description"]; ok {
		var s string
		if err := decodeField(v, "description", &s, "a string"); err != nil {
			return nil, err
		}
		s, err := normalizeDescription(s)
		if err != nil {
			return nil, err
		}
		p.Description = &s
	}
	if v, ok := raw["completed"]; ok {
		var b bool
		if err := decodeField(v, "completed", &b, "a boolean"); err != nil {
			return nil, err
		}
		p.Completed = &b
	}
	return p, nil
}

func (p *TaskPatch) Apply(t *models.Task) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// UserPatch is a validated partial update of a user profile. Password is
// still plaintext here; hashing happens when the patch is applied.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// DecodeUserPatch checks the keys against the user allow-list, then decodes
// and validates each present field. Nothing is applied on error.
func DecodeUserPatch(raw map[string]json.RawMessage) (*UserPatch, error) {
	if err := checkAllowed(raw, userPatchFields); err != nil {
		return nil, err
	}

	p := &UserPatch{}
	if v, ok := raw["name"]; ok {
		var s string
		if err := decodeField(v, "name", &s, "a string"); err != nil {
			return nil, err
		}
		s, err := normalizeName(s)
		if err != nil {
			return nil, err
		}
		p.Name = &s
	}
	if v, ok := raw["email"]; ok {
		var s string
		if err := decodeField(v, "email", &s, "a string"); err != nil {
			return nil, err
		}
		s = normalizeEmail(s)
		if err := validateEmail(s); err != nil {
			return nil, err
		}
		p.Email = &s
	}
	if v, ok := raw["password"]; ok {
		var s string
		if err := decodeField(v, "password", &s, "a string"); err != nil {
			return nil, err
		}
		if err := validatePassword(s); err != nil {
			return nil, err
		}
		p.Password = &s
	}
	if v, ok := raw["age"]; ok {
		var n int
		if err := decodeField(v, "age", &n, "an integer"); err != nil {
			return nil, err
		}
		if err := validateAge(n); err != nil {
			return nil, err
		}
		p.Age = &n
	}
	return p, nil
}
