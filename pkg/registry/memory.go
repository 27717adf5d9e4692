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

package registry

import (
	"sync"

	"caddy-fleet/pkg/templating"
)

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
// Records are copied on read and write so callers never share memory with
// the store.
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[string]*Instance
	templates map[string]*templating.Template
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instances: make(map[string]*Instance),
		templates: make(map[string]*templating.Template),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Instance operations

func (s *MemoryStore) CreateInstance(instance *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *instance
	s.instances[instance.ID] = &copied
	return nil
}

func (s *MemoryStore) GetInstance(id string) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instance, ok := s.instances[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindInstance, ID: id}
	}
	copied := *instance
	return &copied, nil
}

func (s *MemoryStore) ListInstances() ([]*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instances := make([]*Instance, 0, len(s.instances))
	for _, instance := range s.instances {
		copied := *instance
		instances = append(instances, &copied)
	}
	return instances, nil
}

func (s *MemoryStore) UpdateInstance(instance *Instance) error {
	return s.CreateInstance(instance)
}

func (s *MemoryStore) DeleteInstance(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[id]; !ok {
		return &NotFoundError{Kind: KindInstance, ID: id}
	}
	delete(s.instances, id)
	return nil
}

// Template operations

func (s *MemoryStore) CreateTemplate(template *templating.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *template
	s.templates[template.ID] = &copied
	return nil
}

func (s *MemoryStore) GetTemplate(id string) (*templating.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	template, ok := s.templates[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindTemplate, ID: id}
	}
	copied := *template
	return &copied, nil
}

func (s *MemoryStore) ListTemplates() ([]*templating.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	templates := make([]*templating.Template, 0, len(s.templates))
	for _, template := range s.templates {
		copied := *template
		templates = append(templates, &copied)
	}
	return templates, nil
}

func (s *MemoryStore) UpdateTemplate(template *templating.Template) error {
	return s.CreateTemplate(template)
}

func (s *MemoryStore) DeleteTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return &NotFoundError{Kind: KindTemplate, ID: id}
	}
	delete(s.templates, id)
	return nil
}
