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

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caddy-fleet/pkg/fleet"
)

// Envelope is the uniform response shape of every endpoint.
type Envelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError is the structured error half of the envelope.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, Envelope{
		Success: false,
		Error:   &EnvelopeError{Code: code, Message: message, Details: details},
	})
}

// respondFromError classifies err and writes the matching envelope and
// status. Upstream failures keep their raw detail so operators can tell
// connectivity from authentication from syntax problems.
func respondFromError(c *gin.Context, err error) {
	opErr := fleet.ClassifyError(err)
	respondError(c, statusForCode(opErr.Code), opErr.Code, opErr.Message, opErr.Detail)
}

// statusForCode maps stable operation error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case fleet.CodeValidation:
		return http.StatusBadRequest
	case fleet.CodeNotFound:
		return http.StatusNotFound
	case fleet.CodeConflict:
		return http.StatusPreconditionFailed
	default:
		// Transport, upstream, credential, decode and internal failures
		// are all reported as a server-side failure of the orchestration.
		return http.StatusInternalServerError
	}
}
