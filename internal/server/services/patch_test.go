package services

import (
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTaskPatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		check   func(t *testing.T, p *TaskPatch)
	}{
		{name: "empty", body: `{}`, check: func(t *testing.T, p *TaskPatch) {
			assert.Nil(t, p.Description)
			assert.Nil(t, p.Completed)
		}},
		{name: "both fields", body: `{"description":" x ","completed":true}`, check: func(t *testing.T, p *TaskPatch) {
			require.NotNil(t, p.Description)
			assert.Equal(t, "x", *p.Description)
			require.NotNil(t, p.Completed)
			assert.True(t, *p.Completed)
		}},
		{name: "owner", body: `{"owner":"u2"}`, wantErr: common.ErrInvalidUpdateFields},
		{name: "id", body: `{"id":"t2","completed":true}`, wantErr: common.ErrInvalidUpdateFields},
		{name: "empty description", body: `{"description":"  "}`, wantErr: common.ErrValidation},
		{name: "wrong type", body: `{"completed":"yes"}`, wantErr: common.ErrValidation},
		{name: "null completed", body: `{"completed":null}`, wantErr: common.ErrValidation},
		{name: "null description", body: `{"description": null }`, wantErr: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeTaskPatch(rawPatch(t, tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestTaskPatch_Apply(t *testing.T) {
	task := &models.Task{ID: "t1", Description: "old", OwnerID: "u1"}
	desc := "new"
	(&TaskPatch{Description: &desc}).Apply(task)

	assert.Equal(t, "new", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, "u1", task.OwnerID)
}

func TestDecodeUserPatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "all allowed", body: `{"name":"A","email":"a@example.com","password":"secret123","age":3}`},
		{name: "tokens", body: `{"tokens":[]}`, wantErr: common.ErrInvalidUpdateFields},
		{name: "avatar", body: `{"name":"A","avatar":"x"}`, wantErr: common.ErrInvalidUpdateFields},
		{name: "bad email", body: `{"email":"nope"}`, wantErr: common.ErrValidation},
		{name: "weak password", body: `{"password":"password123"}`, wantErr: common.ErrValidation},
		{name: "fractional age", body: `{"age":1.5}`, wantErr: common.ErrValidation},
		{name: "negative age", body: `{"age":-1}`, wantErr: common.ErrValidation},
		{name: "blank name", body: `{"name":""}`, wantErr: common.ErrValidation},
		{name: "null age", body: `{"age":null}`, wantErr: common.ErrValidation},
		{name: "null name", body: `{"name":null}`, wantErr: common.ErrValidation},
		{name: "null email", body: `{"email":null}`, wantErr: common.ErrValidation},
		{name: "null password", body: `{"password":null}`, wantErr: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeUserPatch(rawPatch(t, tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p.Name)
			assert.NotNil(t, p.Email)
			assert.NotNil(t, p.Password)
			assert.NotNil(t, p.Age)
		})
	}
}

func TestDecodePatch_NullNamesField(t *testing.T) {
	_, err := DecodeTaskPatch(rawPatch(t, `{"description":"x","completed":null}`))
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "completed", ve.Field)
	assert.Equal(t, "completed: must not be null", ve.Error())

	_, err = DecodeUserPatch(rawPatch(t, `{"age":null}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "age", ve.Field)
}
