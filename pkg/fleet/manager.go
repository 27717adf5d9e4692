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

// Package fleet orchestrates configuration operations across the managed
// instances. The Manager resolves instance identifiers to live admin
// clients and exposes the single-instance operation surface; the
// BulkCoordinator fans one mutation out over many instances with full
// per-instance failure isolation.
package fleet

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"caddy-fleet/pkg/adminapi"
	"caddy-fleet/pkg/etag"
	"caddy-fleet/pkg/events"
	"caddy-fleet/pkg/registry"
)

// Manager is the single-instance orchestrator. It owns the client cache and
// the instance lifecycle, and forwards configuration operations to the
// resolved admin client.
//
// A configuration write moves through resolving, dispatching and exactly one
// terminal outcome (success, conflict, upstream error or not-found). There
// are no retries; every call starts fresh.
type Manager struct {
	store  registry.Store
	cache  *clientCache
	bus    *events.EventBus
	logger *slog.Logger
}

// ManagerConfig contains configuration options for creating a Manager.
type ManagerConfig struct {
	// Store is the instance and template registry. Required.
	Store registry.Store

	// Bus receives lifecycle and operation events. Required.
	Bus *events.EventBus

	// Logger for orchestration logging. Required.
	Logger *slog.Logger

	// ClientTimeout bounds every single admin API call. Zero means the
	// admin client default.
	ClientTimeout time.Duration
}

// NewManager creates a new Manager.
//
// Parameters:
//   - cfg: manager configuration (store, event bus, logger, client timeout)
//
// Returns the Manager.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		store:  cfg.Store,
		cache:  newClientCache(cfg.ClientTimeout),
		bus:    cfg.Bus,
		logger: cfg.Logger,
	}
}

// AddInstance validates and registers a new instance. A missing ID is
// generated; status starts as unknown until the first probe.
func (m *Manager) AddInstance(instance *registry.Instance) error {
	if err := instance.Validate(); err != nil {
		return err
	}

	if instance.ID == "" {
		instance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	instance.CreatedAt = now
	instance.UpdatedAt = now
	if instance.Status == "" {
		instance.Status = registry.StatusUnknown
	}

	if err := m.store.CreateInstance(instance); err != nil {
		return err
	}

	m.logger.Info("instance registered", "instance_id", instance.ID, "name", instance.Name, "admin_url", instance.AdminURL)
	m.bus.Publish(events.NewInstanceRegistered(instance.ID, instance.Name))
	return nil
}

// UpdateInstance replaces an existing instance record and invalidates its
// cached client so the next operation connects with the new URL and
// credentials. In-flight operations on the old client are unaffected.
//
// Probe state is owned by TestConnection; an update never carries it, so
// Status and LastSeen survive from the stored record.
func (m *Manager) UpdateInstance(instance *registry.Instance) error {
	if err := instance.Validate(); err != nil {
		return err
	}

	existing, err := m.store.GetInstance(instance.ID)
	if err != nil {
		return err
	}

	instance.CreatedAt = existing.CreatedAt
	instance.Status = existing.Status
	instance.LastSeen = existing.LastSeen
	instance.UpdatedAt = time.Now().UTC()

	if err := m.store.UpdateInstance(instance); err != nil {
		return err
	}

	m.cache.invalidate(instance.ID)
	m.logger.Info("instance updated", "instance_id", instance.ID, "name", instance.Name)
	m.bus.Publish(events.NewInstanceUpdated(instance.ID))
	return nil
}

// DeleteInstance removes an instance from the registry and drops its cached
// client.
func (m *Manager) DeleteInstance(instanceID string) error {
	if err := m.store.DeleteInstance(instanceID); err != nil {
		return err
	}

	m.cache.invalidate(instanceID)
	m.logger.Info("instance removed", "instance_id", instanceID)
	m.bus.Publish(events.NewInstanceRemoved(instanceID))
	return nil
}

// GetInstance fetches one instance record.
func (m *Manager) GetInstance(instanceID string) (*registry.Instance, error) {
	return m.store.GetInstance(instanceID)
}

// ListInstances returns all registered instances.
func (m *Manager) ListInstances() ([]*registry.Instance, error) {
	return m.store.ListInstances()
}

// client resolves an instance identifier to a live admin client. An unknown
// identifier surfaces as *registry.NotFoundError, never as a connectivity
// failure.
func (m *Manager) client(instanceID string) (*adminapi.Client, error) {
	instance, err := m.store.GetInstance(instanceID)
	if err != nil {
		return nil, err
	}
	return m.cache.resolve(instance)
}

// observe logs and publishes the outcome of one configuration operation.
func (m *Manager) observe(instanceID, operation string, start time.Time, err error) {
	duration := time.Since(start)
	if err != nil {
		opErr := ClassifyError(err)
		m.logger.Warn("operation failed",
			"instance_id", instanceID, "operation", operation, "code", opErr.Code, "duration", duration, "error", err)
		m.bus.Publish(events.NewOperationCompleted(instanceID, operation, false, opErr.Code, duration))
		return
	}
	m.logger.Debug("operation completed", "instance_id", instanceID, "operation", operation, "duration", duration)
	m.bus.Publish(events.NewOperationCompleted(instanceID, operation, true, "", duration))
}

// GetConfig reads the configuration at path from one instance and returns
// the concurrency token captured from the response.
func (m *Manager) GetConfig(ctx context.Context, instanceID, path string) (interface{}, string, error) {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return nil, "", err
	}

	value, token, err := client.GetConfig(ctx, path)
	m.observe(instanceID, "get config", start, err)
	return value, token, err
}

// SetConfig writes the configuration at path on one instance.
//
// When token is non-empty the write is conditional. The token is checked
// against a fresh read first so stale writes are rejected even by instances
// that ignore If-Match, then forwarded so the instance can enforce it
// atomically. The returned token reflects the instance's state after the
// write; when the write response carries none, a follow-up read captures it.
func (m *Manager) SetConfig(ctx context.Context, instanceID, path string, value interface{}, token string) (string, error) {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return "", err
	}

	if token != "" {
		_, current, err := client.GetConfig(ctx, path)
		if err != nil {
			m.observe(instanceID, "set config", start, err)
			return "", err
		}
		if etag.Validate(token, current) == etag.OutcomeConflict {
			err := &etag.ConflictError{Supplied: token, Current: current}
			m.observe(instanceID, "set config", start, err)
			return "", err
		}
	}

	newToken, err := client.SetConfig(ctx, path, value, token)
	if err != nil {
		m.observe(instanceID, "set config", start, err)
		return "", err
	}

	if newToken == "" {
		if _, captured, readErr := client.GetConfig(ctx, path); readErr == nil {
			newToken = captured
		}
	}

	m.observe(instanceID, "set config", start, nil)
	return newToken, nil
}

// PatchConfig merges value into the configuration at path on one instance.
func (m *Manager) PatchConfig(ctx context.Context, instanceID, path string, value interface{}) error {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return err
	}

	err = client.PatchConfig(ctx, path, value)
	m.observe(instanceID, "patch config", start, err)
	return err
}

// DeleteConfig removes the configuration subtree at path on one instance.
func (m *Manager) DeleteConfig(ctx context.Context, instanceID, path string) error {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return err
	}

	err = client.DeleteConfig(ctx, path)
	m.observe(instanceID, "delete config", start, err)
	return err
}

// LoadConfig replaces one instance's entire configuration tree.
func (m *Manager) LoadConfig(ctx context.Context, instanceID string, value interface{}) error {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return err
	}

	err = client.LoadConfig(ctx, value)
	m.observe(instanceID, "load config", start, err)
	return err
}

// Adapt converts a configuration dialect into its structured form on one
// instance without applying it.
func (m *Manager) Adapt(ctx context.Context, instanceID, text, dialect string) (interface{}, error) {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return nil, err
	}

	value, err := client.Adapt(ctx, text, dialect)
	m.observe(instanceID, "adapt config", start, err)
	return value, err
}

// ListUpstreams returns one instance's current proxy upstreams.
func (m *Manager) ListUpstreams(ctx context.Context, instanceID string) ([]adminapi.Upstream, error) {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return nil, err
	}

	upstreams, err := client.ListUpstreams(ctx)
	m.observe(instanceID, "list upstreams", start, err)
	return upstreams, err
}

// GetPKIAuthority fetches certificate authority information from one
// instance.
func (m *Manager) GetPKIAuthority(ctx context.Context, instanceID, authorityID string) (*adminapi.PKIAuthority, error) {
	start := time.Now()
	client, err := m.client(instanceID)
	if err != nil {
		return nil, err
	}

	authority, err := client.GetPKIAuthority(ctx, authorityID)
	m.observe(instanceID, "get pki authority", start, err)
	return authority, err
}

// TestConnection probes one instance and records the observed status in the
// registry. Probe failure is part of the result, not an error; the error
// return covers resolution and persistence only.
func (m *Manager) TestConnection(ctx context.Context, instanceID string) (adminapi.ProbeResult, error) {
	instance, err := m.store.GetInstance(instanceID)
	if err != nil {
		return adminapi.ProbeResult{}, err
	}

	client, err := m.cache.resolve(instance)
	if err != nil {
		return adminapi.ProbeResult{}, err
	}

	result := client.TestConnection(ctx)

	instance.Status = registry.StatusUnreachable
	if result.Healthy {
		instance.Status = registry.StatusHealthy
		instance.LastSeen = time.Now().UTC()
	}
	if err := m.store.UpdateInstance(instance); err != nil {
		m.logger.Warn("failed to record probe outcome", "instance_id", instanceID, "error", err)
	}

	m.bus.Publish(events.NewInstanceProbed(instanceID, result.Healthy, result.Latency, result.Message))
	return result, nil
}
