package tenantctx_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cockpit/internal/tenantctx"
)

func TestPersistStore_RoundTrip(t *testing.T) {
	store := tenantctx.NewPersistStore(t.TempDir(), nil)

	_, ok := store.Load()
	assert.False(t, ok, "empty state dir has nothing to load")

	require.NoError(t, store.Save(tenantctx.PersistedContext{
		TenantSlug:  "acme",
		ProjectSlug: "proj1",
	}))

	pc, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, "acme", pc.TenantSlug)
	assert.Equal(t, "proj1", pc.ProjectSlug)
}

func TestPersistStore_SaveOverwrites(t *testing.T) {
	store := tenantctx.NewPersistStore(t.TempDir(), nil)

	require.NoError(t, store.Save(tenantctx.PersistedContext{TenantSlug: "acme", ProjectSlug: "proj1"}))
	require.NoError(t, store.Save(tenantctx.PersistedContext{TenantSlug: "beta"}))

	pc, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, "beta", pc.TenantSlug)
	assert.Empty(t, pc.ProjectSlug)
}

func TestPersistStore_CorruptFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "context.json"), []byte("{not json"), 0o600))

	store := tenantctx.NewPersistStore(dir, nil)
	_, ok := store.Load()
	assert.False(t, ok)
}

func TestPersistStore_LoadReadsFreshEveryTime(t *testing.T) {
	dir := t.TempDir()
	store := tenantctx.NewPersistStore(dir, nil)

	require.NoError(t, store.Save(tenantctx.PersistedContext{TenantSlug: "acme"}))
	_, ok := store.Load()
	require.True(t, ok)

	// Another process rewrites the file behind our back.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "context.json"),
		[]byte(`{"tenant_slug":"beta"}`), 0o600))

	pc, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, "beta", pc.TenantSlug)
}

func TestPersistStore_Clear(t *testing.T) {
	store := tenantctx.NewPersistStore(t.TempDir(), nil)

	require.NoError(t, store.Save(tenantctx.PersistedContext{TenantSlug: "acme"}))
	store.Clear()

	_, ok := store.Load()
	assert.False(t, ok)

	// Clearing an already-empty store is a no-op.
	store.Clear()
}
