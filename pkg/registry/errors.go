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

import "fmt"

// Kind names the record type an error concerns.
type Kind string

const (
	KindInstance Kind = "instance"
	KindTemplate Kind = "template"
)

// NotFoundError reports a lookup for a record that does not exist. Callers
// use it to distinguish resolution failures from storage failures.
type NotFoundError struct {
	// Kind is the record type that was requested
	Kind Kind

	// ID is the identifier that did not resolve
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidRecordError reports a record that violates its own invariants and
// must not be stored.
type InvalidRecordError struct {
	// Kind is the record type being validated
	Kind Kind

	// Reason describes the violated invariant
	Reason string
}

// Error implements the error interface.
func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid %s record: %s", e.Kind, e.Reason)
}
