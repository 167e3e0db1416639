package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		FilePath:    filepath.Join(t.TempDir(), "nested", "store.json"),
		BackupCount: 2,
	}
}

func TestDataStore_PersistsAcrossReopen(t *testing.T) {
	cfg := testConfig(t)

	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, ds.Put("guild-1", record{Name: "runners", Count: 3}))
	require.NoError(t, ds.Close())

	reopened, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	var got record
	ok, err := reopened.Get("guild-1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record{Name: "runners", Count: 3}, got)
	assert.Equal(t, []string{"guild-1"}, reopened.Keys())
}

func TestDataStore_GetMissingKey(t *testing.T) {
	ds, err := NewWithConfig(testConfig(t))
	require.NoError(t, err)
	defer ds.Close()

	var got record
	ok, err := ds.Get("nope", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDataStore_ClosedRejectsWrites(t *testing.T) {
	ds, err := NewWithConfig(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())

	assert.ErrorIs(t, ds.Put("k", 1), ErrClosed)
	assert.ErrorIs(t, ds.SaveToFile(), ErrClosed)
}

func TestDataStore_KeepsBoundedBackups(t *testing.T) {
	cfg := testConfig(t)
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer ds.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Put("k", i))
		require.NoError(t, ds.SaveToFile())
	}

	backups, err := filepath.Glob(cfg.FilePath + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, cfg.BackupCount)
}

func TestDataStore_RejectsCorruptFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755))
	require.NoError(t, os.WriteFile(cfg.FilePath, []byte("{not json"), 0o644))

	_, err := NewWithConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDataStore_Delete(t *testing.T) {
	ds, err := NewWithConfig(testConfig(t))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Put("a", 1))
	require.NoError(t, ds.Put("b", 2))
	ds.Delete("a")
	assert.Equal(t, []string{"b"}, ds.Keys())
}
