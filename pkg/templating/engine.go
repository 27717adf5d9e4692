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
	"io"
	"strings"

	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/nikolalohinski/gonja/v2/loaders"
)

// engineConfig controls interpolation of embedded placeholders. Skeleton
// strings are single expressions, so block trimming is irrelevant, but
// StrictUndefined is left off: undeclared placeholders are caught by the
// renderer's own declaration check before the engine ever runs.
var engineConfig = &config.Config{
	BlockStartString:    "{%",
	BlockEndString:      "%}",
	VariableStartString: "{{",
	VariableEndString:   "}}",
	CommentStartString:  "{#",
	CommentEndString:    "#}",
	AutoEscape:          false,
	StrictUndefined:     false,
}

var engineEnvironment = &exec.Environment{
	Filters:           builtins.Filters,
	Tests:             builtins.Tests,
	ControlStructures: builtins.ControlStructures,
	Methods:           builtins.Methods,
	Context:           builtins.GlobalFunctions,
}

// interpolate executes one skeleton string as a template with the given
// bindings and returns the expanded string.
func interpolate(content string, bindings map[string]interface{}) (string, error) {
	template, err := exec.NewTemplate("inline", engineConfig, newInlineLoader(content), engineEnvironment)
	if err != nil {
		return "", err
	}

	return template.ExecuteToString(exec.NewContext(bindings))
}

// inlineLoader serves a single anonymous template. Skeleton strings never
// include or inherit from other templates.
type inlineLoader struct {
	content string
}

func newInlineLoader(content string) loaders.Loader {
	return &inlineLoader{content: content}
}

// Read returns an io.Reader for the template content regardless of path.
func (l *inlineLoader) Read(_ string) (io.Reader, error) {
	return strings.NewReader(l.content), nil
}

// Resolve returns the path unchanged.
func (l *inlineLoader) Resolve(path string) (string, error) {
	return path, nil
}

// Inherit returns the same loader instance.
func (l *inlineLoader) Inherit(_ string) (loaders.Loader, error) {
	return l, nil
}
