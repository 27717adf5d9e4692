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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"k8s.io/client-go/util/jsonpath"
)

// ExtractField evaluates a kubectl-style JSONPath expression against data.
//
// The expression includes braces, e.g. "{.count}" or "{.instances[0].name}".
// Data is round-tripped through JSON before evaluation so that arbitrary
// structs and maps evaluate the same way their serialized form reads.
func ExtractField(data interface{}, jsonPathExpr string) (interface{}, error) {
	if jsonPathExpr == "" {
		return data, nil
	}

	j := jsonpath.New("field-extractor").AllowMissingKeys(true)
	if err := j.Parse(jsonPathExpr); err != nil {
		return nil, fmt.Errorf("invalid jsonpath expression %q: %w", jsonPathExpr, err)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}

	var unmarshaled interface{}
	if err := json.Unmarshal(jsonData, &unmarshaled); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := j.Execute(buf, unmarshaled); err != nil {
		return nil, fmt.Errorf("failed to execute jsonpath: %w", err)
	}

	// The jsonpath library emits formatted text. Objects and arrays come
	// back as JSON; anything that does not parse stays a string.
	var result interface{}
	if buf.Len() > 0 {
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			result = buf.String()
		}
	}

	return result, nil
}

// fieldQuery returns the "field" query parameter of a request, or "" when
// no field selection was asked for.
func fieldQuery(r *http.Request) string {
	return r.URL.Query().Get("field")
}
