// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig parses YAML configuration and applies default values.
// This is the recommended function for loading configuration.
//
// It performs three operations atomically:
//  1. Parses YAML into a Config struct
//  2. Applies environment variable overrides
//  3. Applies default values to unset fields
//
// Example:
//
//	cfg, err := config.LoadConfig(yamlString)
//	if err != nil {
//	    return err
//	}
//	// cfg now has defaults applied and is ready for validation
func LoadConfig(configYAML string) (*Config, error) {
	cfg, err := parseConfig(configYAML)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

// LoadConfigFile reads and loads configuration from a file path.
// An empty path yields a config consisting entirely of defaults
// (plus environment overrides).
func LoadConfigFile(path string) (*Config, error) {
	if path == "" {
		cfg := &Config{}
		applyEnvOverrides(cfg)
		setDefaults(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadConfig(string(data))
}

// parseConfig parses YAML configuration into a Config struct.
// This is a pure function that only parses YAML - it does not apply
// defaults or perform validation.
func parseConfig(configYAML string) (*Config, error) {
	if configYAML == "" {
		return nil, fmt.Errorf("config YAML is empty")
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(configYAML), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//
//	FLEET_LISTEN_ADDR, FLEET_METRICS_ADDR, FLEET_DEBUG_ADDR, FLEET_DATA_DIR,
//	FLEET_CLIENT_TIMEOUT, FLEET_PROBE_INTERVAL, FLEET_BULK_MAX_CONCURRENCY,
//	FLEET_VERBOSE
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLEET_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("FLEET_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("FLEET_DEBUG_ADDR"); v != "" {
		cfg.Server.DebugAddr = v
	}
	if v := os.Getenv("FLEET_DATA_DIR"); v != "" {
		cfg.Registry.DataDir = v
	}
	if v := os.Getenv("FLEET_CLIENT_TIMEOUT"); v != "" {
		cfg.Fleet.ClientTimeout = v
	}
	if v := os.Getenv("FLEET_PROBE_INTERVAL"); v != "" {
		cfg.Fleet.ProbeInterval = v
	}
	if v := os.Getenv("FLEET_BULK_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fleet.BulkMaxConcurrency = n
		}
	}
	if v := os.Getenv("FLEET_VERBOSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Logging.Verbose = n
		}
	}
}
