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
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"caddy-fleet/pkg/core/config"
	"caddy-fleet/pkg/core/logging"
	"caddy-fleet/pkg/events"
	"caddy-fleet/pkg/fleet"
	"caddy-fleet/pkg/httpapi"
	"caddy-fleet/pkg/introspection"
	"caddy-fleet/pkg/metrics"
	"caddy-fleet/pkg/registry"
)

var runConfigFile string

// runCmd represents the run command (controller main loop).
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fleet controller daemon",
	Long: `Run the fleet controller daemon.

The daemon serves the operator HTTP API, probes instance reachability in
the background and exposes Prometheus metrics.

Configuration is loaded from:
1. The YAML file named by --config (optional)
2. Environment variables (FLEET_LISTEN_ADDR, FLEET_DATA_DIR, ...)
3. Default values (lowest priority)

Example usage:
  # Run with defaults
  fleetd run

  # Run with a configuration file
  fleetd run --config /etc/caddy-fleet/config.yaml`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().StringVar(&runConfigFile, "config", "",
		"Path to the YAML configuration file (optional)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFile(runConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateStructure(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(logging.LevelFromVerbosity(cfg.Logging.Verbose))
	slog.SetDefault(logger)

	gomaxprocs := runtime.GOMAXPROCS(0)
	gomemlimit := "unlimited"
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		gomemlimit = fmt.Sprintf("%d bytes (%.2f MiB)", limit, float64(limit)/(1024*1024))
	}

	logger.Info("fleet controller starting",
		"listen_addr", cfg.Server.ListenAddr,
		"metrics_addr", cfg.Server.MetricsAddr,
		"data_dir", cfg.Registry.DataDir,
		"probe_interval", cfg.Fleet.GetProbeInterval(),
		"gomaxprocs", gomaxprocs,
		"gomemlimit", gomemlimit)

	store, err := registry.NewBoltStore(cfg.Registry.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer store.Close()

	bus := events.NewEventBus(100)

	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector(promRegistry, bus)

	manager := fleet.NewManager(fleet.ManagerConfig{
		Store:         store,
		Bus:           bus,
		Logger:        logger,
		ClientTimeout: cfg.Fleet.GetClientTimeout(),
	})
	coordinator := fleet.NewBulkCoordinator(manager, cfg.Fleet.BulkMaxConcurrency, bus, logger)
	monitor := fleet.NewMonitor(manager, cfg.Fleet.GetProbeInterval(), cfg.Fleet.GetProbeTimeout(), logger)

	apiServer := httpapi.NewServer(httpapi.Config{
		Addr:        cfg.Server.ListenAddr,
		CORSOrigins: cfg.Server.CORSOrigins,
		Manager:     manager,
		Coordinator: coordinator,
		Store:       store,
		Logger:      logger,
	})
	metricsServer := metrics.NewServer(cfg.Server.MetricsAddr, promRegistry, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return apiServer.Start(ctx) })
	g.Go(func() error { return metricsServer.Start(ctx) })
	g.Go(func() error { return monitor.Run(ctx) })
	g.Go(func() error {
		collector.Run(ctx)
		return nil
	})

	if cfg.Server.DebugAddr != "" {
		debugServer := introspection.NewServer(cfg.Server.DebugAddr, newDebugRegistry(cfg, store))
		g.Go(func() error { return debugServer.Start(ctx) })
	}

	// Subscriptions are wired; release any buffered startup events.
	bus.Start()

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("controller failed", "error", err)
		return err
	}

	logger.Info("controller shutdown complete")
	return nil
}
