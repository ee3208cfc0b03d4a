package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "title too short",
			field:    "title",
			message:  "must be at least 3 characters",
			expected: "validation error on field 'title': must be at least 3 characters",
		},
		{
			name:     "year format",
			field:    "year",
			message:  "must be a 4 digit year",
			expected: "validation error on field 'year': must be a 4 digit year",
		},
		{
			name:     "empty field name",
			field:    "",
			message:  "test message",
			expected: "validation error on field '': test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{Field: tt.field, Message: tt.message}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("write movie: %w", &ValidationError{Field: "itemId", Message: "invalid"})

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrNotFound))

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "itemId", validationErr.Field)
}

func TestSentinelErrors_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "ErrNotFound", err: ErrNotFound, expected: "entity not found"},
		{name: "ErrMovieNotFound", err: ErrMovieNotFound, expected: "movie not found"},
		{name: "ErrValidationFailed", err: ErrValidationFailed, expected: "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSentinelErrors_Uniqueness(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrMovieNotFound))
	assert.False(t, errors.Is(ErrMovieNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrValidationFailed))
}

func TestValidationError_ZeroValue(t *testing.T) {
	var err ValidationError

	assert.Equal(t, "", err.Field)
	assert.Equal(t, "validation error on field '': ", err.Error())
}
