// Copyright 2026 The Caddy Fleet Controller Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides data models for the fleet controller configuration.
//
// These models represent the structure of the configuration YAML loaded from
// a file (or environment overrides) at startup.
package config

// Config is the root configuration structure.
type Config struct {
	// Server contains settings for the operator-facing HTTP API.
	Server ServerConfig `yaml:"server"`

	// Logging configures logging behavior.
	Logging LoggingConfig `yaml:"logging"`

	// Registry configures persistent storage for instance and template records.
	Registry RegistryConfig `yaml:"registry"`

	// Fleet configures the admin clients and fan-out behavior.
	Fleet FleetConfig `yaml:"fleet"`
}

// ServerConfig contains settings for the operator-facing HTTP API.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP API listens on.
	// Default: ":8080"
	ListenAddr string `yaml:"listen_addr"`

	// MetricsAddr is the TCP address for Prometheus metrics.
	// Default: ":9090"
	MetricsAddr string `yaml:"metrics_addr"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty disables CORS headers entirely.
	CORSOrigins []string `yaml:"cors_origins"`

	// DebugAddr is the TCP address for the debug variable server.
	// Empty disables the debug server.
	DebugAddr string `yaml:"debug_addr"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Verbose controls log level: 0=WARNING, 1=INFO, 2=DEBUG
	// Default: 0. An unset field and an explicit 0 are indistinguishable,
	// so the zero value must stay a valid level.
	Verbose int `yaml:"verbose"`
}

// RegistryConfig configures persistent storage for registry records.
type RegistryConfig struct {
	// DataDir is the directory holding the embedded database file.
	// Default: /var/lib/caddy-fleet
	DataDir string `yaml:"data_dir"`
}

// FleetConfig configures admin clients and bulk fan-out.
type FleetConfig struct {
	// ClientTimeout bounds every single admin API call.
	// Format: Go duration string (e.g., "15s", "500ms")
	// Default: 15s
	ClientTimeout string `yaml:"client_timeout"`

	// ProbeTimeout bounds a single reachability probe.
	// Format: Go duration string
	// Default: 5s
	ProbeTimeout string `yaml:"probe_timeout"`

	// ProbeInterval is the period between background reachability sweeps
	// over all registered instances. "0" disables background probing.
	// Format: Go duration string
	// Default: 30s
	ProbeInterval string `yaml:"probe_interval"`

	// BulkMaxConcurrency bounds how many instances a bulk operation
	// touches at the same time.
	// Default: 8
	BulkMaxConcurrency int `yaml:"bulk_max_concurrency"`
}
