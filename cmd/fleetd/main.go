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

// Package main provides the CLI entrypoint for the fleet controller daemon.
//
// The daemon accepts configuration via a YAML file, environment variables,
// or defaults, and runs until receiving SIGTERM or SIGINT, at which point
// it performs graceful shutdown.
package main

import (
	"fmt"
	"os"

	_ "github.com/KimMachineGun/automemlimit"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fleetd",
	Short: "Configuration orchestrator for a fleet of web-server instances",
	Long: `fleetd manages a fleet of independently running web-server instances
through their JSON administrative APIs.

It keeps a registry of instances, forwards configuration reads and writes
to them individually or in bulk, guards writes with optimistic concurrency
tokens, and renders configuration from parameterized templates.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
