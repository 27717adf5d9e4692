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

// Package introspection exposes internal controller state over a debug
// HTTP server.
//
// It plays the role of the standard library's expvar package, with two
// differences: the registry is instance-based instead of global, and
// queries support JSONPath field selection so an operator can pull a
// single field out of a large variable.
//
// Example usage:
//
//	registry := introspection.NewRegistry()
//	registry.Publish("uptime", introspection.Func(func() (interface{}, error) {
//	    return time.Since(startTime).String(), nil
//	}))
//
//	server := introspection.NewServer(":6060", registry)
//	go server.Start(ctx)
//
//	// GET /debug/vars                          list variable paths
//	// GET /debug/vars/uptime                   one variable
//	// GET /debug/vars/instances?field={.count} one field of a variable
package introspection

import (
	"sync"
	"sync/atomic"
)

// Var is a debug variable that reports its current value on demand.
//
// The returned value must be JSON-serializable. Implementations must be
// safe for concurrent use; Get is called from HTTP handler goroutines.
type Var interface {
	Get() (interface{}, error)
}

// Func adapts a function to the Var interface. The function runs on every
// query, so values that are expensive to build are only built when asked
// for.
type Func func() (interface{}, error)

// Get implements Var.
func (f Func) Get() (interface{}, error) {
	return f()
}

// IntVar is an atomic 64-bit integer variable.
type IntVar struct {
	value atomic.Int64
}

// NewInt creates an IntVar holding the given initial value.
func NewInt(initial int64) *IntVar {
	v := &IntVar{}
	v.value.Store(initial)
	return v
}

// Get implements Var.
func (v *IntVar) Get() (interface{}, error) {
	return v.value.Load(), nil
}

// Set replaces the current value.
func (v *IntVar) Set(value int64) {
	v.value.Store(value)
}

// Add adds delta to the current value.
func (v *IntVar) Add(delta int64) {
	v.value.Add(delta)
}

// Value returns the current value.
func (v *IntVar) Value() int64 {
	return v.value.Load()
}

// MapVar is a mutex-guarded map variable for structured values that change
// over time.
type MapVar struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// NewMap creates an empty MapVar.
func NewMap() *MapVar {
	return &MapVar{data: make(map[string]interface{})}
}

// Get implements Var. It returns a copy so callers cannot mutate the map
// behind the lock.
func (v *MapVar) Get() (interface{}, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	result := make(map[string]interface{}, len(v.data))
	for k, val := range v.data {
		result[k] = val
	}

	return result, nil
}

// Set stores value under key.
func (v *MapVar) Set(key string, value interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
}

// Delete removes key from the map.
func (v *MapVar) Delete(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.data, key)
}

// Len returns the number of entries.
func (v *MapVar) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.data)
}
