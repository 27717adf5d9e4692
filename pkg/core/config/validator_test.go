package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Logging.Verbose = 1
	return cfg
}

func TestValidateStructureAcceptsDefaults(t *testing.T) {
	require.NoError(t, ValidateStructure(validConfig()))
}

func TestValidateStructureNilConfig(t *testing.T) {
	err := ValidateStructure(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty listen addr",
			mutate:  func(c *Config) { c.Server.ListenAddr = "" },
			wantErr: "listen_addr",
		},
		{
			name: "listen and metrics collide",
			mutate: func(c *Config) {
				c.Server.ListenAddr = ":9090"
				c.Server.MetricsAddr = ":9090"
			},
			wantErr: "cannot be the same",
		},
		{
			name:    "verbose out of range",
			mutate:  func(c *Config) { c.Logging.Verbose = 3 },
			wantErr: "verbose",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Registry.DataDir = "" },
			wantErr: "data_dir",
		},
		{
			name:    "zero bulk concurrency",
			mutate:  func(c *Config) { c.Fleet.BulkMaxConcurrency = 0 },
			wantErr: "bulk_max_concurrency",
		},
		{
			name:    "malformed client timeout",
			mutate:  func(c *Config) { c.Fleet.ClientTimeout = "soon" },
			wantErr: "client_timeout",
		},
		{
			name:    "negative probe interval",
			mutate:  func(c *Config) { c.Fleet.ProbeInterval = "-5s" },
			wantErr: "cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStructure(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
