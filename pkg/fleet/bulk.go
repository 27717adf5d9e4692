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

	"caddy-fleet/pkg/events"
)

// DefaultMaxConcurrency bounds bulk fan-out when no limit is configured.
const DefaultMaxConcurrency = 8

// Mutation is one configuration operation applied to one instance. It must
// report its outcome in the result, never panic, and should observe ctx so
// cancellation can abort it best-effort.
type Mutation func(ctx context.Context, instanceID string) OperationResult

// BulkCoordinator fans one mutation out over many instances concurrently.
//
// Each target runs as an independent invocation: one instance's failure
// never cancels, delays or alters another's. Results are collected per
// occurrence and returned atomically once every invocation has finished.
type BulkCoordinator struct {
	manager        *Manager
	maxConcurrency int
	bus            *events.EventBus
	logger         *slog.Logger
}

// NewBulkCoordinator creates a new BulkCoordinator.
//
// Parameters:
//   - manager: the single-instance orchestrator operations dispatch through
//   - maxConcurrency: upper bound on concurrently executing invocations;
//     zero or negative selects DefaultMaxConcurrency
//   - bus: receives bulk progress events
//   - logger: coordinator logging
//
// Returns the BulkCoordinator.
func NewBulkCoordinator(manager *Manager, maxConcurrency int, bus *events.EventBus, logger *slog.Logger) *BulkCoordinator {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &BulkCoordinator{
		manager:        manager,
		maxConcurrency: maxConcurrency,
		bus:            bus,
		logger:         logger,
	}
}

// BulkApply runs mutation once per occurrence in instanceIDs, concurrently,
// bounded by the configured maximum. Duplicated identifiers are processed
// once per occurrence, not de-duplicated; in the result map a failed
// occurrence takes precedence over a successful one for the same identifier.
//
// An empty target list yields an empty, vacuously successful result.
//
// Cancellation: ctx cancellation aborts in-flight invocations best-effort.
// Invocations that already completed keep their outcomes; targets whose
// invocation was cut short record a "canceled" failure. BulkApply always
// waits for every launched invocation before returning, so the result map
// is complete and consistent either way.
func (c *BulkCoordinator) BulkApply(ctx context.Context, instanceIDs []string, mutation Mutation) BulkResult {
	start := time.Now()
	c.bus.Publish(events.NewBulkApplyStarted(len(instanceIDs)))

	occurrences := make([]OperationResult, len(instanceIDs))

	// Workers intentionally return nil always: errgroup provides the
	// bounded pool and the wait, while failure isolation requires that no
	// invocation aborts its siblings.
	g := &errgroup.Group{}
	g.SetLimit(c.maxConcurrency)

	for i, instanceID := range instanceIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				occurrences[i] = FailureResult(err)
				return nil
			}
			occurrences[i] = mutation(ctx, instanceID)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]OperationResult, len(instanceIDs))
	allSucceeded := true
	for i, instanceID := range instanceIDs {
		result := occurrences[i]
		if !result.Success {
			allSucceeded = false
		}
		if existing, ok := results[instanceID]; ok && !existing.Success {
			continue
		}
		results[instanceID] = result
	}

	bulk := BulkResult{Results: results, AllSucceeded: allSucceeded}

	c.logger.Info("bulk apply finished",
		"targets", len(instanceIDs), "failed", bulk.FailureCount(), "all_succeeded", allSucceeded, "duration", time.Since(start))
	c.bus.Publish(events.NewBulkApplyCompleted(len(instanceIDs), bulk.FailureCount(), allSucceeded, time.Since(start)))
	return bulk
}

// BulkSetConfig writes the same configuration value at path on every target
// instance. Writes are unconditional; per-instance optimistic locking does
// not compose across a fleet-wide fan-out.
func (c *BulkCoordinator) BulkSetConfig(ctx context.Context, instanceIDs []string, path string, value interface{}) BulkResult {
	return c.BulkApply(ctx, instanceIDs, func(ctx context.Context, instanceID string) OperationResult {
		token, err := c.manager.SetConfig(ctx, instanceID, path, value, "")
		if err != nil {
			return FailureResult(err)
		}
		return SuccessResult(nil, token)
	})
}

// BulkLoadConfig replaces the entire configuration tree on every target
// instance.
func (c *BulkCoordinator) BulkLoadConfig(ctx context.Context, instanceIDs []string, value interface{}) BulkResult {
	return c.BulkApply(ctx, instanceIDs, func(ctx context.Context, instanceID string) OperationResult {
		if err := c.manager.LoadConfig(ctx, instanceID, value); err != nil {
			return FailureResult(err)
		}
		return SuccessResult(nil, "")
	})
}
