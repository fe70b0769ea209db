package middleware

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commandBody struct {
	Action  string `json:"action" binding:"required,lifecycle_action"`
	Comment string `json:"comment" binding:"max=5"`
}

type definitionBody struct {
	Type     string   `json:"type" binding:"required,task_type"`
	Commands []string `json:"assigned_commands" binding:"dive,lifecycle_action"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

func TestRegisterValidations(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name  string
		value any
		ok    bool
	}{
		{"known action", commandBody{Action: "ACTIVATE"}, true},
		{"action is case insensitive", commandBody{Action: "reopen"}, true},
		{"unknown action", commandBody{Action: "FREEZE"}, false},
		{"comment too long", commandBody{Action: "LOCK", Comment: "too long"}, false},
		{"known task type", definitionBody{Type: "FOUR_EYES"}, true},
		{"unknown task type", definitionBody{Type: "SIGNATURE"}, false},
		{"every assigned command checked", definitionBody{Type: "CUSTOM", Commands: []string{"LOCK", "PAY"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := newValidator()
	err := v.Struct(definitionBody{Type: "", Commands: []string{"PAY"}})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-7")

	require.NotNil(t, resp.Error)
	assert.Equal(t, "ERR_VALIDATION", resp.Error.Code)
	assert.Equal(t, "req-7", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "type", resp.Error.Details[0].Field)
	assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
	assert.Equal(t, "assigned_commands[0]", resp.Error.Details[1].Field)
	assert.Contains(t, resp.Error.Details[1].Message, "ACTIVATE")
}
