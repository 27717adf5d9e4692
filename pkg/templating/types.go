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

// Package templating renders parameterized configuration templates.
//
// A template is a nested configuration skeleton whose string values may
// contain placeholder markers ({{ name }}). Rendering binds declared
// variables into the skeleton: a string that consists of exactly one
// placeholder is replaced by the bound value with its declared type
// preserved, while strings with embedded placeholders are interpolated
// through the Gonja engine (Jinja2-like syntax) and stay strings.
//
// Validation and rendering are separate steps. Validation collects every
// binding violation instead of stopping at the first; rendering refuses
// to run while any violation exists.
package templating

// VariableType is the declared primitive type of a template variable.
type VariableType string

const (
	// TypeString accepts string bindings.
	TypeString VariableType = "string"

	// TypeNumber accepts integer and floating point bindings. Numeric
	// strings are not coerced.
	TypeNumber VariableType = "number"

	// TypeBoolean accepts boolean bindings.
	TypeBoolean VariableType = "boolean"
)

// Valid reports whether t is one of the supported primitive types.
func (t VariableType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean:
		return true
	default:
		return false
	}
}

// VariableDecl declares one template variable.
type VariableDecl struct {
	// Name is the placeholder identifier referenced as {{ name }}.
	Name string `json:"name" yaml:"name"`

	// Type is the primitive type bindings must satisfy.
	Type VariableType `json:"type" yaml:"type"`

	// Required marks variables that must be bound. A required variable
	// with a Default is satisfied by the default.
	Required bool `json:"required" yaml:"required"`

	// Default is substituted when no binding is supplied. Optional.
	Default interface{} `json:"default,omitempty" yaml:"default,omitempty"`

	// Description is display metadata for operators. Optional.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Template is a reusable, parameterized configuration skeleton. Templates
// are created by an operator and read many times for rendering; rendering
// never mutates the template itself.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Config is the nested configuration skeleton containing placeholder
	// markers in its string values.
	Config interface{} `json:"config"`

	// Variables declares, in order, every placeholder the skeleton may
	// reference.
	Variables []VariableDecl `json:"variables"`
}

// Violation describes one binding problem found during validation.
type Violation struct {
	// Variable is the declared variable the violation concerns.
	Variable string `json:"variable"`

	// Code is a stable machine-readable identifier
	// ("missing_required" or "type_mismatch").
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Violation codes.
const (
	CodeMissingRequired = "missing_required"
	CodeTypeMismatch    = "type_mismatch"
)
