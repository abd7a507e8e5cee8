package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointAtMissingFile keeps a config.yaml in the working directory from
// leaking into tests.
func pointAtMissingFile(t *testing.T) {
	t.Helper()
	t.Setenv("RSL_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	pointAtMissingFile(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Data.Seed)
	assert.Zero(t, cfg.Data.LicenseKeySeed)
}

func TestLoadEnvOverrides(t *testing.T) {
	pointAtMissingFile(t)
	t.Setenv("RSL_SERVER_PORT", "9090")
	t.Setenv("RSL_LOGGING_LEVEL", "debug")
	t.Setenv("RSL_SECURITY_RATE_LIMIT_ENABLED", "false")
	t.Setenv("RSL_DATA_LICENSE_KEY_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, int64(42), cfg.Data.LicenseKeySeed)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7070\nlogging:\n  level: warn\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("RSL_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFileBeatenByEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644))
	t.Setenv("RSL_CONFIG_FILE", path)
	t.Setenv("RSL_SERVER_PORT", "9091")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9091, cfg.Server.Port)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "port out of range",
			env:     map[string]string{"RSL_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "negative rate limit",
			env:     map[string]string{"RSL_SECURITY_RATE_LIMIT_RPS": "-1"},
			wantErr: "rate limit rps",
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"RSL_LOGGING_LEVEL": "verbose"},
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pointAtMissingFile(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))
	t.Setenv("RSL_CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorContains(t, err, "parse config file")
}
