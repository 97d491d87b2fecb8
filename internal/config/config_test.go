package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/config"
)

func TestLoad_FillsDefaultsForZeroFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: 127.0.0.1\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, config.Default().Server.Port, cfg.Server.Port)
	require.Equal(t, config.Default().Store.DataDir, cfg.Store.DataDir)
}

func TestLoad_ParsesFullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  host: 0.0.0.0
  port: 9090
store:
  data_dir: /var/lib/tapedrive
logging:
  level: debug
  format: json
  output: stdout
mining:
  pow_verifier: keccak
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/var/lib/tapedrive", cfg.Store.DataDir)
	require.EqualValues(t, "debug", cfg.Logging.Level)
	require.Equal(t, "keccak", cfg.Mining.PowVerifier)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := config.Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
}
