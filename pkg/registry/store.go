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

import "caddy-fleet/pkg/templating"

// Store is the persistence interface for fleet records. Implementations
// must be safe for concurrent use; the bulk coordinator reads instance
// records from many goroutines at once.
//
// Lookups for absent records return *NotFoundError. Create and Update are
// both upserts keyed by ID; record-level validation is the caller's
// responsibility.
type Store interface {
	// Instance operations
	CreateInstance(instance *Instance) error
	GetInstance(id string) (*Instance, error)
	ListInstances() ([]*Instance, error)
	UpdateInstance(instance *Instance) error
	DeleteInstance(id string) error

	// Template operations
	CreateTemplate(template *templating.Template) error
	GetTemplate(id string) (*templating.Template, error)
	ListTemplates() ([]*templating.Template, error)
	UpdateTemplate(template *templating.Template) error
	DeleteTemplate(id string) error

	// Close releases the underlying resources
	Close() error
}
