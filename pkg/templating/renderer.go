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
	"regexp"
)

// placeholderPattern matches {{ name }} markers inside skeleton strings.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// wholePlaceholderPattern matches strings that consist of exactly one
// placeholder and nothing else. Such strings are replaced by the bound
// value with its declared type preserved.
var wholePlaceholderPattern = regexp.MustCompile(`^\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}$`)

// Validate checks bindings against the template's variable declarations and
// returns every violation found. An empty slice means the bindings are
// acceptable for rendering.
//
// Rules, evaluated independently per declared variable:
// - A required variable that is neither bound nor defaulted is a violation.
// - A bound value whose runtime type does not match the declared primitive
//   type is a violation. Numeric strings are not coerced.
func Validate(tpl *Template, bindings map[string]interface{}) []Violation {
	violations := []Violation{}

	for _, decl := range tpl.Variables {
		value, bound := bindings[decl.Name]
		if !bound {
			if decl.Required && decl.Default == nil {
				violations = append(violations, Violation{
					Variable: decl.Name,
					Code:     CodeMissingRequired,
					Message:  fmt.Sprintf("required variable '%s' is not bound", decl.Name),
				})
			}
			continue
		}

		if !typeMatches(decl.Type, value) {
			violations = append(violations, Violation{
				Variable: decl.Name,
				Code:     CodeTypeMismatch,
				Message: fmt.Sprintf("variable '%s' must be %s, got %T",
					decl.Name, decl.Type, value),
			})
		}
	}

	return violations
}

// Render substitutes bindings into the template skeleton and returns the
// resulting configuration value. Rendering is refused while Validate reports
// any violation; the returned error is then a *ValidationError. A placeholder
// with no matching declaration yields a *StructuralError.
//
// The template itself is never mutated.
func Render(tpl *Template, bindings map[string]interface{}) (interface{}, error) {
	if violations := Validate(tpl, bindings); len(violations) > 0 {
		return nil, &ValidationError{TemplateName: tpl.Name, Violations: violations}
	}

	effective := make(map[string]interface{}, len(tpl.Variables))
	declared := make(map[string]struct{}, len(tpl.Variables))
	for _, decl := range tpl.Variables {
		declared[decl.Name] = struct{}{}
		if decl.Default != nil {
			effective[decl.Name] = decl.Default
		}
	}
	for name, value := range bindings {
		effective[name] = value
	}

	return renderValue(tpl, tpl.Config, declared, effective)
}

// renderValue walks the skeleton recursively. Maps and slices are rebuilt so
// the original skeleton stays untouched; non-string scalars pass through.
func renderValue(tpl *Template, value interface{}, declared map[string]struct{}, bindings map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, child := range v {
			rendered, err := renderValue(tpl, child, declared, bindings)
			if err != nil {
				return nil, err
			}
			out[key] = rendered
		}
		return out, nil

	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			rendered, err := renderValue(tpl, child, declared, bindings)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil

	case string:
		return renderString(tpl, v, declared, bindings)

	default:
		return value, nil
	}
}

// renderString substitutes placeholders in one skeleton string. A string
// that is exactly one placeholder keeps the bound value's type; a string
// with embedded placeholders is interpolated and stays a string.
func renderString(tpl *Template, s string, declared map[string]struct{}, bindings map[string]interface{}) (interface{}, error) {
	if match := wholePlaceholderPattern.FindStringSubmatch(s); match != nil {
		name := match[1]
		if _, ok := declared[name]; !ok {
			return nil, &StructuralError{TemplateName: tpl.Name, Placeholder: name}
		}
		return bindings[name], nil
	}

	names := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(names) == 0 {
		return s, nil
	}

	for _, match := range names {
		if _, ok := declared[match[1]]; !ok {
			return nil, &StructuralError{TemplateName: tpl.Name, Placeholder: match[1]}
		}
	}

	out, err := interpolate(s, bindings)
	if err != nil {
		return nil, &RenderError{TemplateName: tpl.Name, Cause: err}
	}
	return out, nil
}

// typeMatches reports whether value satisfies the declared primitive type.
func typeMatches(declared VariableType, value interface{}) bool {
	switch declared {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch value.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	default:
		return false
	}
}
