// File path: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "ADMIN_TOKEN", "TIMEBANK_DB_PATH", "TIMEBANK_CSV_DIR", "TIMEBANK_BACKUP_DIR", "TIMEBANK_BACKUP_SCHEDULE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "admin_token", cfg.AdminToken)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("ADMIN_TOKEN", "hunter2")
	t.Setenv("TIMEBANK_DB_PATH", "/data/tb.sqlite")
	t.Setenv("TIMEBANK_CSV_DIR", "/data/csv")
	t.Setenv("TIMEBANK_BACKUP_DIR", "/data/backups")
	t.Setenv("TIMEBANK_BACKUP_SCHEDULE", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:           8080,
		AdminToken:     "hunter2",
		DBPath:         "/data/tb.sqlite",
		CSVDir:         "/data/csv",
		BackupDir:      "/data/backups",
		BackupSchedule: "@hourly",
	}, cfg)
}

func TestLoadRejectsBadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("PORT", "70000")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, loaded)

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ADMIN_TOKEN=from-file\n"), 0o600))
	loaded, err = LoadDotEnv(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	t.Cleanup(func() { os.Unsetenv("ADMIN_TOKEN") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AdminToken)
}
