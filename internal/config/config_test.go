package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "session.json", filepath.Base(cfg.StateFile))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server_url: https://tasks.internal:9443
state_file: /var/lib/taskdeck/session.json
request_timeout: 15s
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.internal:9443", cfg.ServerURL)
	assert.Equal(t, "/var/lib/taskdeck/session.json", cfg.StateFile)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: http://from-file:8080\n"), 0o600))

	t.Setenv("TASKDECK_SERVER_URL", "http://from-env:8080")
	t.Setenv("TASKDECK_REQUEST_TIMEOUT", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8080", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestInvalidTimeoutIgnored(t *testing.T) {
	t.Setenv("TASKDECK_REQUEST_TIMEOUT", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
}

func TestMissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestMalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: [broken\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
