package config

import (
	"fmt"
	"time"
)

// ValidateStructure performs basic structural validation on the configuration.
// Validates required fields and value ranges.
func ValidateStructure(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if err := validateRegistryConfig(&cfg.Registry); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	if err := validateFleetConfig(&cfg.Fleet); err != nil {
		return fmt.Errorf("fleet: %w", err)
	}

	return nil
}

// validateServerConfig validates the HTTP server configuration.
func validateServerConfig(sc *ServerConfig) error {
	if sc.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}

	if sc.MetricsAddr == "" {
		return fmt.Errorf("metrics_addr cannot be empty")
	}

	if sc.ListenAddr == sc.MetricsAddr {
		return fmt.Errorf("listen_addr and metrics_addr cannot be the same (%s)", sc.ListenAddr)
	}

	if sc.DebugAddr != "" && (sc.DebugAddr == sc.ListenAddr || sc.DebugAddr == sc.MetricsAddr) {
		return fmt.Errorf("debug_addr cannot collide with another listener (%s)", sc.DebugAddr)
	}

	return nil
}

// validateLoggingConfig validates the logging configuration.
func validateLoggingConfig(lc *LoggingConfig) error {
	if lc.Verbose < 0 || lc.Verbose > 2 {
		return fmt.Errorf("verbose must be 0 (WARNING), 1 (INFO), or 2 (DEBUG), got %d", lc.Verbose)
	}

	return nil
}

// validateRegistryConfig validates the registry storage configuration.
func validateRegistryConfig(rc *RegistryConfig) error {
	if rc.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}

	return nil
}

// validateFleetConfig validates admin client and fan-out settings.
func validateFleetConfig(fc *FleetConfig) error {
	if fc.BulkMaxConcurrency < 1 {
		return fmt.Errorf("bulk_max_concurrency must be at least 1, got %d", fc.BulkMaxConcurrency)
	}

	for field, value := range map[string]string{
		"client_timeout": fc.ClientTimeout,
		"probe_timeout":  fc.ProbeTimeout,
		"probe_interval": fc.ProbeInterval,
	} {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q", field, value)
		}
		if d < 0 {
			return fmt.Errorf("%s: duration cannot be negative", field)
		}
	}

	if d := fc.GetClientTimeout(); d == 0 {
		return fmt.Errorf("client_timeout cannot be zero")
	}

	return nil
}
