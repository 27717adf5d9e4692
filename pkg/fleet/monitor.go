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

package fleet

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Monitor periodically probes every registered instance and records the
// observed reachability in the registry. Probe outcomes reach other
// components through the event bus.
type Monitor struct {
	manager      *Manager
	interval     time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewMonitor creates a new Monitor.
//
// Parameters:
//   - manager: the orchestrator used for probing
//   - interval: time between probe sweeps; zero disables monitoring
//   - probeTimeout: per-instance probe deadline within a sweep
//   - logger: monitor logging
//
// Returns the Monitor.
func NewMonitor(manager *Manager, interval, probeTimeout time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		manager:      manager,
		interval:     interval,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Run probes the fleet on every tick until ctx is cancelled. Returns nil on
// cancellation and immediately when monitoring is disabled.
func (m *Monitor) Run(ctx context.Context) error {
	if m.interval <= 0 {
		m.logger.Info("health monitoring disabled")
		return nil
	}

	m.logger.Info("health monitor started", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("health monitor stopped")
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep probes all registered instances once, concurrently. One instance's
// slow or failing probe does not delay the others beyond the pool bound.
func (m *Monitor) Sweep(ctx context.Context) {
	instances, err := m.manager.ListInstances()
	if err != nil {
		m.logger.Warn("failed to list instances for probing", "error", err)
		return
	}

	g := &errgroup.Group{}
	g.SetLimit(DefaultMaxConcurrency)

	for _, instance := range instances {
		g.Go(func() error {
			probeCtx := ctx
			if m.probeTimeout > 0 {
				var cancel context.CancelFunc
				probeCtx, cancel = context.WithTimeout(ctx, m.probeTimeout)
				defer cancel()
			}

			result, err := m.manager.TestConnection(probeCtx, instance.ID)
			if err != nil {
				m.logger.Warn("probe dispatch failed", "instance_id", instance.ID, "error", err)
				return nil
			}
			if !result.Healthy {
				m.logger.Debug("instance unreachable", "instance_id", instance.ID, "message", result.Message)
			}
			return nil
		})
	}
	_ = g.Wait()
}
