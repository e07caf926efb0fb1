package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewValidation("input cannot be empty")
	assert.Equal(t, "VALIDATION: input cannot be empty", err.Error())

	wrapped := NewInternal("store failed", fmt.Errorf("disk full"))
	assert.Contains(t, wrapped.Error(), "INTERNAL: store failed")
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestWrap_PreservesType(t *testing.T) {
	base := NewNotFound("topic not found")
	wrapped := Wrap(base, "orientation lookup")

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInternal(wrapped))
	assert.Contains(t, wrapped.Error(), "orientation lookup")
}

func TestWrap_ForeignErrorBecomesInternal(t *testing.T) {
	wrapped := Wrap(stderrors.New("boom"), "loading seed")
	assert.True(t, IsInternal(wrapped))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "no-op"))
}

func TestTypeChecks(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("v")))
	assert.True(t, IsNotFound(NewNotFound("n")))
	assert.True(t, IsUnavailable(NewUnavailable("u", nil)))
	assert.False(t, IsValidation(stderrors.New("plain")))
}
