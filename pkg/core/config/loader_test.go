package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigParsesAndAppliesDefaults(t *testing.T) {
	yaml := `
server:
  listen_addr: ":7070"
logging:
  verbose: 2
fleet:
  client_timeout: 3s
  bulk_max_concurrency: 4
`

	cfg, err := LoadConfig(yaml)
	require.NoError(t, err)

	// Explicit values preserved
	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.Equal(t, 2, cfg.Logging.Verbose)
	assert.Equal(t, 4, cfg.Fleet.BulkMaxConcurrency)
	assert.Equal(t, 3*time.Second, cfg.Fleet.GetClientTimeout())

	// Defaults filled in
	assert.Equal(t, DefaultMetricsAddr, cfg.Server.MetricsAddr)
	assert.Equal(t, DefaultDataDir, cfg.Registry.DataDir)
	assert.Equal(t, DefaultProbeInterval, cfg.Fleet.GetProbeInterval())
}

func TestLoadConfigVerboseDefaultsToWarning(t *testing.T) {
	cfg, err := LoadConfig("server:\n  listen_addr: \":7070\"\n")
	require.NoError(t, err)

	// 0 maps to WARNING; no default promotes an unset field to INFO.
	assert.Equal(t, 0, cfg.Logging.Verbose)
}

func TestLoadConfigEmptyYAML(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := LoadConfig("server: [not a mapping")
	require.Error(t, err)
}

func TestLoadConfigFileMissingPath(t *testing.T) {
	cfg, err := LoadConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, DefaultBulkMaxConcurrency, cfg.Fleet.BulkMaxConcurrency)
}

func TestLoadConfigFileReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry:\n  data_dir: /tmp/fleet-test\n"), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fleet-test", cfg.Registry.DataDir)
}

func TestLoadConfigFileNonexistent(t *testing.T) {
	_, err := LoadConfigFile("/nonexistent/fleet.yaml")
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FLEET_LISTEN_ADDR", ":6000")
	t.Setenv("FLEET_BULK_MAX_CONCURRENCY", "2")

	cfg, err := LoadConfig("logging:\n  verbose: 1\n")
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.Server.ListenAddr)
	assert.Equal(t, 2, cfg.Fleet.BulkMaxConcurrency)
}

func TestGetDurationsFallBackOnInvalid(t *testing.T) {
	fc := FleetConfig{ClientTimeout: "not-a-duration", ProbeInterval: "also-bad"}

	assert.Equal(t, DefaultClientTimeout, fc.GetClientTimeout())
	assert.Equal(t, DefaultProbeInterval, fc.GetProbeInterval())
	assert.Equal(t, DefaultProbeTimeout, fc.GetProbeTimeout())
}

func TestGetProbeIntervalZeroDisables(t *testing.T) {
	fc := FleetConfig{ProbeInterval: "0"}
	assert.Equal(t, time.Duration(0), fc.GetProbeInterval())
}
