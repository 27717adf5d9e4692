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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"caddy-fleet/pkg/core/config"
)

var checkConfigFile string

// checkConfigCmd validates a configuration file without starting the daemon.
var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate a configuration file and exit",
	Long: `Validate a configuration file and exit.

Loads the file, applies environment overrides and defaults, and runs the
same structural validation the daemon performs at startup. Exits non-zero
when the configuration would prevent the daemon from starting.

Example usage:
  fleetd check-config --config /etc/caddy-fleet/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigFile(checkConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.ValidateStructure(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		fmt.Printf("configuration is valid (listen %s, metrics %s, data dir %s)\n",
			cfg.Server.ListenAddr, cfg.Server.MetricsAddr, cfg.Registry.DataDir)
		return nil
	},
}

func init() {
	checkConfigCmd.Flags().StringVar(&checkConfigFile, "config", "",
		"Path to the YAML configuration file (optional)")
}
