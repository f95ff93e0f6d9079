package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.Reconcile.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Reconcile.RetryDelay.Duration)
	assert.Equal(t, 2*time.Minute, cfg.Reconcile.AttemptTimeout.Duration)
	assert.Equal(t, DefaultPageSize, cfg.Pagination.PageSize)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskledger.toml")
	contents := `
[reconcile]
max_attempts = 5
retry_delay = "30s"

[pagination]
page_size = 25
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Reconcile.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Reconcile.RetryDelay.Duration)
	// Unset keys keep their defaults.
	assert.Equal(t, 2*time.Minute, cfg.Reconcile.AttemptTimeout.Duration)
	assert.Equal(t, 25, cfg.Pagination.PageSize)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskledger.toml")
	require.NoError(t, os.WriteFile(path, []byte("[reconcile]\nmax_attempts = 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskledger.toml")
	require.NoError(t, os.WriteFile(path, []byte("[reconcile]\nretry_delay = \"five minutes\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
