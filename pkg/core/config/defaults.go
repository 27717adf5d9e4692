package config

import "time"

// Default values for configuration fields.
const (
	// DefaultListenAddr is the default address for the operator-facing HTTP API.
	DefaultListenAddr = ":8080"

	// DefaultMetricsAddr is the default address for Prometheus metrics.
	DefaultMetricsAddr = ":9090"

	// DefaultDataDir is the default directory for the embedded database.
	DefaultDataDir = "/var/lib/caddy-fleet"

	// DefaultClientTimeout bounds every single admin API call.
	DefaultClientTimeout = 15 * time.Second

	// DefaultProbeTimeout bounds a single reachability probe.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultProbeInterval is the default period between reachability sweeps.
	DefaultProbeInterval = 30 * time.Second

	// DefaultBulkMaxConcurrency bounds concurrent instances in a bulk call.
	DefaultBulkMaxConcurrency = 8
)

// setDefaults applies default values to unset configuration fields.
// This modifies the config in-place and should be called after parsing
// the configuration and before validation.
func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = DefaultMetricsAddr
	}

	// Verbose keeps its zero value: 0 is a valid level (WARNING) and an
	// unset field cannot be told apart from an explicit 0.

	if cfg.Registry.DataDir == "" {
		cfg.Registry.DataDir = DefaultDataDir
	}

	if cfg.Fleet.BulkMaxConcurrency == 0 {
		cfg.Fleet.BulkMaxConcurrency = DefaultBulkMaxConcurrency
	}
}

// GetClientTimeout returns the configured admin client timeout
// or the default if not specified or invalid.
func (f *FleetConfig) GetClientTimeout() time.Duration {
	if f.ClientTimeout != "" {
		if duration, err := time.ParseDuration(f.ClientTimeout); err == nil {
			return duration
		}
	}
	return DefaultClientTimeout
}

// GetProbeTimeout returns the configured probe timeout
// or the default if not specified or invalid.
func (f *FleetConfig) GetProbeTimeout() time.Duration {
	if f.ProbeTimeout != "" {
		if duration, err := time.ParseDuration(f.ProbeTimeout); err == nil {
			return duration
		}
	}
	return DefaultProbeTimeout
}

// GetProbeInterval returns the configured probe interval or the default if
// not specified or invalid. An explicit "0" disables background probing.
func (f *FleetConfig) GetProbeInterval() time.Duration {
	if f.ProbeInterval != "" {
		if duration, err := time.ParseDuration(f.ProbeInterval); err == nil {
			return duration
		}
	}
	return DefaultProbeInterval
}
