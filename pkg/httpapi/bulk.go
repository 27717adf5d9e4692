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

// bulkConfigUpdateRequest targets one configuration write at many
// instances.
type bulkConfigUpdateRequest struct {
	InstanceIDs []string    `json:"instance_ids"`
	Path        string      `json:"path"`
	Config      interface{} `json:"config"`
}

// bulkConfigUpdate fans the write out and reports 200 only when every
// target succeeded. A partial outcome is 207: neither pure success nor pure
// failure, with per-instance detail in the result map.
func (a *api) bulkConfigUpdate(c *gin.Context) {
	var req bulkConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid request body", err.Error())
		return
	}
	if req.Config == nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "config payload is required", "")
		return
	}

	result := a.coordinator.BulkSetConfig(c.Request.Context(), req.InstanceIDs, req.Path, req.Config)

	status := http.StatusOK
	if !result.AllSucceeded {
		status = http.StatusMultiStatus
	}
	c.JSON(status, Envelope{Success: result.AllSucceeded, Data: result})
}

// bulkTemplateApply is reserved until template rendering is wired into the
// bulk pipeline.
func (a *api) bulkTemplateApply(c *gin.Context) {
	respondError(c, http.StatusNotImplemented, "not_implemented",
		"bulk template apply is not implemented yet", "")
}
