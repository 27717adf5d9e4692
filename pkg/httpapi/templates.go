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
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"caddy-fleet/pkg/fleet"
	"caddy-fleet/pkg/templating"
)

// templateRequest is the write shape for template creation and update.
type templateRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Config      interface{}               `json:"config"`
	Variables   []templating.VariableDecl `json:"variables"`
}

func (r *templateRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	if r.Config == nil {
		return "config skeleton is required"
	}
	for _, decl := range r.Variables {
		if decl.Name == "" {
			return "variable declarations need a name"
		}
		if !decl.Type.Valid() {
			return "unknown variable type: " + string(decl.Type)
		}
	}
	return ""
}

func (a *api) listTemplates(c *gin.Context) {
	templates, err := a.store.ListTemplates()
	if err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, templates)
}

func (a *api) createTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid request body", err.Error())
		return
	}
	if reason := req.validate(); reason != "" {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, reason, "")
		return
	}

	template := &templating.Template{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
		Variables:   req.Variables,
	}
	if err := a.store.CreateTemplate(template); err != nil {
		respondFromError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, template)
}

func (a *api) getTemplate(c *gin.Context) {
	template, err := a.store.GetTemplate(c.Param("id"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, template)
}

func (a *api) updateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid request body", err.Error())
		return
	}
	if reason := req.validate(); reason != "" {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, reason, "")
		return
	}

	id := c.Param("id")
	if _, err := a.store.GetTemplate(id); err != nil {
		respondFromError(c, err)
		return
	}

	template := &templating.Template{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
		Variables:   req.Variables,
	}
	if err := a.store.UpdateTemplate(template); err != nil {
		respondFromError(c, err)
		return
	}

	respondOK(c, http.StatusOK, template)
}

func (a *api) deleteTemplate(c *gin.Context) {
	if err := a.store.DeleteTemplate(c.Param("id")); err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// generateRequest binds variables for one rendering of a template.
type generateRequest struct {
	Variables map[string]interface{} `json:"variables"`
}

// generateTemplate renders the template with the supplied bindings. Binding
// violations are reported all at once as a 400 with per-variable detail;
// rendering is never attempted while violations exist.
func (a *api) generateTemplate(c *gin.Context) {
	template, err := a.store.GetTemplate(c.Param("id"))
	if err != nil {
		respondFromError(c, err)
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid request body", err.Error())
		return
	}

	if violations := templating.Validate(template, req.Variables); len(violations) > 0 {
		detail, _ := json.Marshal(violations)
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "variable bindings are invalid", string(detail))
		return
	}

	value, err := templating.Render(template, req.Variables)
	if err != nil {
		respondFromError(c, err)
		return
	}

	respondOK(c, http.StatusOK, value)
}
