package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDefaultUsesDefaults(t *testing.T) {
	t.Setenv("VIGIL_CONFIG", filepath.Join(t.TempDir(), "nope.json"))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "baseline.json", cfg.Baseline.Path)
	assert.Equal(t, "sha256", cfg.Hash)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vigil.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"scan": {"workers": 4, "excludes": ["*.tmp"]},
		"baseline": {"path": "custom.json", "compress": true},
		"history": {"path": "/var/lib/vigil/history"},
		"log_level": "debug"
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, []string{"*.tmp"}, cfg.Scan.Excludes)
	assert.Equal(t, "custom.json", cfg.Baseline.Path)
	assert.True(t, cfg.Baseline.Compress)
	assert.Equal(t, "/var/lib/vigil/history", cfg.History.Path)
	assert.Equal(t, "sha256", cfg.Hash) // unset field falls back
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vigil.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
