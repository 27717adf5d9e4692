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
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"caddy-fleet/pkg/adminapi"
	"caddy-fleet/pkg/etag"
	"caddy-fleet/pkg/fleet"
	"caddy-fleet/pkg/registry"
)

// instanceRequest is the write shape for instance registration and update.
type instanceRequest struct {
	Name          string `json:"name"`
	AdminURL      string `json:"admin_url"`
	AuthType      string `json:"auth_type"`
	Token         string `json:"token"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	ClientCertPEM string `json:"client_cert_pem"`
	ClientKeyPEM  string `json:"client_key_pem"`
	CACertPEM     string `json:"ca_cert_pem"`
}

// instanceResponse is the read shape. Credential material never leaves the
// API.
type instanceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminURL  string    `json:"admin_url"`
	AuthType  string    `json:"auth_type"`
	Status    string    `json:"status"`
	LastSeen  time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *instanceRequest) toRecord() *registry.Instance {
	authType := adminapi.AuthType(r.AuthType)
	if r.AuthType == "" {
		authType = adminapi.AuthNone
	}
	return &registry.Instance{
		Name:          r.Name,
		AdminURL:      r.AdminURL,
		AuthType:      authType,
		Token:         r.Token,
		Username:      r.Username,
		Password:      r.Password,
		ClientCertPEM: []byte(r.ClientCertPEM),
		ClientKeyPEM:  []byte(r.ClientKeyPEM),
		CACertPEM:     []byte(r.CACertPEM),
	}
}

func toInstanceResponse(instance *registry.Instance) instanceResponse {
	return instanceResponse{
		ID:        instance.ID,
		Name:      instance.Name,
		AdminURL:  instance.AdminURL,
		AuthType:  string(instance.AuthType),
		Status:    string(instance.Status),
		LastSeen:  instance.LastSeen,
		CreatedAt: instance.CreatedAt,
		UpdatedAt: instance.UpdatedAt,
	}
}

// configPathParam extracts the optional config sub-path from the route.
func configPathParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("path"), "/")
}

func (a *api) listInstances(c *gin.Context) {
	instances, err := a.manager.ListInstances()
	if err != nil {
		respondFromError(c, err)
		return
	}

	responses := make([]instanceResponse, 0, len(instances))
	for _, instance := range instances {
		responses = append(responses, toInstanceResponse(instance))
	}
	respondOK(c, http.StatusOK, responses)
}

func (a *api) createInstance(c *gin.Context) {
	var req instanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid request body", err.Error())
		return
	}

	instance := req.toRecord()
	if err := a.manager.AddInstance(instance); err != nil {
		respondFromError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, toInstanceResponse(instance))
}

func (a *api) getInstance(c *gin.Context) {
	instance, err := a.manager.GetInstance(c.Param("id"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toInstanceResponse(instance))
}

func (a *api) updateInstance(c *gin.Context) {
	var req instanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid request body", err.Error())
		return
	}

	instance := req.toRecord()
	instance.ID = c.Param("id")
	if err := a.manager.UpdateInstance(instance); err != nil {
		respondFromError(c, err)
		return
	}

	respondOK(c, http.StatusOK, toInstanceResponse(instance))
}

func (a *api) deleteInstance(c *gin.Context) {
	if err := a.manager.DeleteInstance(c.Param("id")); err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// testConnection reports probe outcomes in the body; the HTTP layer stays
// 200 even when the instance is unreachable, because probe failure is an
// expected result, not a request failure.
func (a *api) testConnection(c *gin.Context) {
	result, err := a.manager.TestConnection(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondFromError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: result.Healthy,
		Data: gin.H{
			"healthy":    result.Healthy,
			"latency_ms": result.Latency.Milliseconds(),
			"message":    result.Message,
		},
	})
}

func (a *api) getConfig(c *gin.Context) {
	value, token, err := a.manager.GetConfig(c.Request.Context(), c.Param("id"), configPathParam(c))
	if err != nil {
		respondFromError(c, err)
		return
	}

	if token != "" {
		c.Header(etag.HeaderName, token)
	}
	respondOK(c, http.StatusOK, value)
}

func (a *api) setConfig(c *gin.Context) {
	var value interface{}
	if err := c.ShouldBindJSON(&value); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid configuration body", err.Error())
		return
	}

	token := c.GetHeader(etag.IfMatchHeader)
	newToken, err := a.manager.SetConfig(c.Request.Context(), c.Param("id"), configPathParam(c), value, token)
	if err != nil {
		respondFromError(c, err)
		return
	}

	if newToken != "" {
		c.Header(etag.HeaderName, newToken)
	}
	respondOK(c, http.StatusOK, gin.H{"token": newToken})
}

func (a *api) patchConfig(c *gin.Context) {
	var value interface{}
	if err := c.ShouldBindJSON(&value); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid configuration body", err.Error())
		return
	}

	if err := a.manager.PatchConfig(c.Request.Context(), c.Param("id"), configPathParam(c), value); err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

func (a *api) deleteConfig(c *gin.Context) {
	if err := a.manager.DeleteConfig(c.Request.Context(), c.Param("id"), configPathParam(c)); err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

func (a *api) loadConfig(c *gin.Context) {
	var value interface{}
	if err := c.ShouldBindJSON(&value); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid configuration body", err.Error())
		return
	}

	if err := a.manager.LoadConfig(c.Request.Context(), c.Param("id"), value); err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

type adaptRequest struct {
	Text    string `json:"text"`
	Dialect string `json:"dialect"`
}

func (a *api) adapt(c *gin.Context) {
	var req adaptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fleet.CodeValidation, "invalid request body", err.Error())
		return
	}

	value, err := a.manager.Adapt(c.Request.Context(), c.Param("id"), req.Text, req.Dialect)
	if err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, value)
}

func (a *api) listUpstreams(c *gin.Context) {
	upstreams, err := a.manager.ListUpstreams(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, upstreams)
}

func (a *api) getPKIAuthority(c *gin.Context) {
	authority, err := a.manager.GetPKIAuthority(c.Request.Context(), c.Param("id"), c.Param("ca_id"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	respondOK(c, http.StatusOK, authority)
}
