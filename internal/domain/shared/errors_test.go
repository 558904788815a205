package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Recipe not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))

	wrapped := fmt.Errorf("load recipe: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "This field is required.").
		Add("url", "Enter a valid URL.").
		Add("name", "Second message")

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, []string{"This field is required.", "Second message"}, err.Fields["name"])
	assert.Equal(t,
		"Invalid input provided (name: This field is required.; Second message, url: Enter a valid URL.)",
		err.Error())

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "INVALID_INPUT", de.Code)
}

func TestNewConflictError(t *testing.T) {
	err := NewConflictError("name", "recipe with this name already exists.")
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, []string{"recipe with this name already exists."}, err.Fields["name"])
}
