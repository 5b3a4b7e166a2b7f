package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DataPath = "/var/lib/docvault"
	cfg.EmbeddingDimension = 768
	cfg.Chunking.SimilarityThreshold = 0.6

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaultsForOmittedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`data_path = "/srv/vault"`+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/vault", cfg.DataPath)
	assert.Equal(t, Default().MaxRetries, cfg.MaxRetries)
	assert.Equal(t, Default().Chunking, cfg.Chunking)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1000, int(cfg.DebounceDelay().Milliseconds()))
	assert.Equal(t, 300, int(cfg.LockTimeout().Seconds()))
	assert.Equal(t, 30, int(cfg.EmbeddingSyncPeriod().Seconds()))
}

func TestSave_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.toml")
	require.NoError(t, Save(path, Default()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
