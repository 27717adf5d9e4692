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
	"sync"
	"time"

	"caddy-fleet/pkg/adminapi"
	"caddy-fleet/pkg/registry"
)

// clientCache holds one admin client per instance identifier. It is the only
// long-lived shared state of the orchestrator and must tolerate concurrent
// reads during bulk fan-out.
//
// Invalidation removes the cache entry only; in-flight operations keep using
// the client they already resolved, which stays functional until released by
// the garbage collector. The next resolution builds a fresh client from the
// updated record.
type clientCache struct {
	mu      sync.RWMutex
	clients map[string]*adminapi.Client
	timeout time.Duration
}

func newClientCache(timeout time.Duration) *clientCache {
	return &clientCache{
		clients: make(map[string]*adminapi.Client),
		timeout: timeout,
	}
}

// resolve returns the cached client for the instance, constructing and
// caching one when absent.
func (c *clientCache) resolve(instance *registry.Instance) (*adminapi.Client, error) {
	c.mu.RLock()
	client, ok := c.clients[instance.ID]
	c.mu.RUnlock()
	if ok {
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have built the client while we upgraded the lock.
	if client, ok := c.clients[instance.ID]; ok {
		return client, nil
	}

	client, err := adminapi.New(adminapi.Config{
		BaseURL:     instance.AdminURL,
		Credentials: instance.Credentials(),
		Timeout:     c.timeout,
	})
	if err != nil {
		return nil, err
	}

	c.clients[instance.ID] = client
	return client, nil
}

// invalidate drops the cached client for the instance.
func (c *clientCache) invalidate(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, instanceID)
}
