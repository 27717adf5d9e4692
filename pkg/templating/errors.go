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

package templating

import (
	"fmt"
	"strings"
)

// ValidationError reports that bindings failed validation. It carries every
// violation found, not just the first.
type ValidationError struct {
	// TemplateName is the name of the template being rendered
	TemplateName string

	// Violations lists each binding problem
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return fmt.Sprintf("template '%s' bindings are invalid: %s",
		e.TemplateName, strings.Join(messages, "; "))
}

// StructuralError reports a placeholder in the template skeleton that no
// declared variable covers. This is a template-authoring defect, distinct
// from a binding violation.
type StructuralError struct {
	// TemplateName is the name of the template containing the placeholder
	TemplateName string

	// Placeholder is the undeclared identifier
	Placeholder string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("template '%s' references undeclared placeholder '%s'",
		e.TemplateName, e.Placeholder)
}

// RenderError represents a template interpolation failure. This occurs when
// an embedded expression fails during engine execution.
type RenderError struct {
	// TemplateName is the name of the template that failed to render
	TemplateName string

	// Cause is the underlying rendering error from the template engine
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render template '%s': %v", e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Cause
}
