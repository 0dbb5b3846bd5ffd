package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := New(CodeTenantNotFound, "tenant acme not found")
	assert.Equal(t, "tenant acme not found", err.Error())

	err = New(CodeNetwork, "")
	assert.Equal(t, "network_error", err.Error())
}

func TestWrap_PreservesExistingCode(t *testing.T) {
	inner := New(CodeRateLimited, "slow down")
	wrapped := Wrap(inner, CodeInternal, "request failed")

	require.True(t, HasCode(wrapped, CodeRateLimited))
	assert.False(t, HasCode(wrapped, CodeInternal))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestWrap_PlainError(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	wrapped := Wrap(inner, CodeNetwork, "dial failed")

	require.True(t, HasCode(wrapped, CodeNetwork))
	assert.ErrorIs(t, wrapped, inner)
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(CodeAccessDenied, "user removed from tenant")
	b := New(CodeAccessDenied, "different message")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(CodeTenantNotFound, "")))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeTimeout, CodeOf(New(CodeTimeout, "deadline")))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("opaque")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}
