package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextTicketID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty store", nil, "7654567897"},
		{"only non-numeric ids", []string{"TCK-1", "abc"}, "7654567897"},
		{"numeric max plus one", []string{"7654567897", "7654567899", "7654567898"}, "7654567900"},
		{"non-numeric ignored", []string{"100", "legacy-9999", "42"}, "101"},
		{"small ids are not raised to the seed", []string{"5"}, "6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextTicketID(tt.ids))
		})
	}
}

func TestMaxNumericTicketID(t *testing.T) {
	_, ok := MaxNumericTicketID([]string{"x", ""})
	assert.False(t, ok)

	max, ok := MaxNumericTicketID([]string{"-3", "7"})
	assert.True(t, ok)
	assert.EqualValues(t, 7, max)
}
