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

package introspection

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the set of published debug variables.
//
// Each Registry is independent, so a test or a restarted component gets a
// fresh one instead of fighting over process-global state. Registry is safe
// for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	vars map[string]Var
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		vars: make(map[string]Var),
	}
}

// Publish registers v at the given path, replacing any previous variable
// at that path. The path becomes the URL suffix under /debug/vars/ and may
// be hierarchical ("fleet/instances").
//
// Publish panics on an empty path or nil Var; both indicate a programming
// error at wiring time.
func (r *Registry) Publish(path string, v Var) {
	if path == "" {
		panic("introspection: empty path not allowed")
	}
	if v == nil {
		panic("introspection: nil Var not allowed")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.vars[path] = v
}

// Get returns the current value of the variable at path.
func (r *Registry) Get(path string) (interface{}, error) {
	r.mu.RLock()
	v, ok := r.vars[path]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("variable %q not found", path)
	}

	return v.Get()
}

// GetWithField returns the value at path, narrowed to a JSONPath field
// expression such as "{.count}". An empty field returns the full value.
func (r *Registry) GetWithField(path, field string) (interface{}, error) {
	value, err := r.Get(path)
	if err != nil {
		return nil, err
	}

	if field == "" {
		return value, nil
	}

	return ExtractField(value, field)
}

// All resolves every registered variable into a path to value map.
func (r *Registry) All() (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]interface{}, len(r.vars))

	for path, v := range r.vars {
		value, err := v.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to get variable %q: %w", path, err)
		}
		result[path] = value
	}

	return result, nil
}

// Paths returns the sorted list of registered variable paths.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.vars))
	for path := range r.vars {
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths
}

// Len returns the number of registered variables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vars)
}
