package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cockpit/pkg/domain-errors"
)

func TestParseTenantID(t *testing.T) {
	raw := uuid.New().String()
	id, err := ParseTenantID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, id.String())
	assert.False(t, id.IsNil())
}

func TestParseTenantID_Invalid(t *testing.T) {
	_, err := ParseTenantID("not-a-uuid")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestIsNil_ZeroValue(t *testing.T) {
	var id ProjectID
	assert.True(t, id.IsNil())
	assert.False(t, NewProjectID().IsNil())
}
