package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "validation", err: NewValidationError("bad", nil), code: CodeValidation, status: http.StatusBadRequest},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", NewNotFound("Ticket", nil)), code: CodeNotFound, status: http.StatusNotFound},
		{name: "dependency", err: NewDependencyUnavailable(map[string]any{"redis": "down"}), code: CodeDependencyUnavailable, status: http.StatusServiceUnavailable},
		{name: "plain error", err: errors.New("boom"), code: CodeInternal, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error: connection reset", err.Error())
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFound("Ticket", map[string]any{"ticketId": "42"})

	assert.Equal(t, "Ticket not found", err.Error())
	assert.Equal(t, "42", ToDomainError(err).Details["ticketId"])
}

type sample struct {
	Subject  string `json:"subject" validate:"required,max=5"`
	Category string `json:"category" validate:"required,oneof=A B"`
	Priority string `json:"priority" validate:"omitempty,oneof=Low High"`
	Internal string `json:"-" validate:"max=1"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		message string
	}{
		{name: "valid", in: sample{Subject: "hi", Category: "A"}},
		{name: "missing fields", in: sample{}, message: "Missing required fields: subject, category"},
		{name: "too long", in: sample{Subject: "toolong", Category: "A"}, message: "subject must be at most 5 characters long"},
		{name: "missing and invalid", in: sample{Category: "A", Priority: "Meh"}, message: "Missing required fields: subject; priority must be one of [Low High]"},
		{name: "multibyte counts runes", in: sample{Subject: strings.Repeat("é", 5), Category: "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, HasCode(err, CodeValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}
