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

package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"caddy-fleet/pkg/etag"
)

// Upstream describes one proxy upstream as reported by the instance.
type Upstream struct {
	Address     string `json:"address"`
	NumRequests int    `json:"num_requests"`
	Fails       int    `json:"fails"`
}

// PKIAuthority describes a certificate authority managed by the instance.
type PKIAuthority struct {
	ID                      string `json:"id,omitempty"`
	Name                    string `json:"name,omitempty"`
	RootCommonName          string `json:"root_common_name,omitempty"`
	IntermediateCommonName  string `json:"intermediate_common_name,omitempty"`
	RootCertificate         string `json:"root_certificate,omitempty"`
	IntermediateCertificate string `json:"intermediate_certificate,omitempty"`
}

// ProbeResult is the outcome of a reachability probe. Probe failure is an
// expected, reportable outcome, not an exceptional one, so there is no
// error channel.
type ProbeResult struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Message string        `json:"message,omitempty"`
}

// configPath builds the /config/[sub-path] request path. An empty path
// addresses the configuration root.
func configPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/config/"
	}
	return "/config/" + trimmed
}

// checkResponse validates a response status. 412 is returned as a distinct
// conflict; every other non-2xx becomes an UpstreamError carrying the raw
// body. The response body is consumed on failure.
func checkResponse(resp *http.Response, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := readBody(resp)
	if resp.StatusCode == http.StatusPreconditionFailed {
		return &etag.ConflictError{
			Supplied: resp.Request.Header.Get(etag.IfMatchHeader),
			Detail:   detail,
		}
	}

	return &UpstreamError{Operation: operation, StatusCode: resp.StatusCode, Detail: detail}
}

// GetConfig fetches the configuration at path (or the root when path is
// empty) and returns the concurrency token captured from the response.
func (c *Client) GetConfig(ctx context.Context, path string) (interface{}, string, error) {
	const op = "get config"

	resp, err := c.do(ctx, op, http.MethodGet, configPath(path), nil, "")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, op); err != nil {
		return nil, "", err
	}

	token := etag.Capture(resp.Header)

	var value interface{}
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return nil, "", &DecodeError{Operation: op, Cause: err}
	}

	return value, token, nil
}

// LoadConfig replaces the entire configuration tree. Full-replace semantics
// bypass optimistic locking: no token is required or produced.
func (c *Client) LoadConfig(ctx context.Context, value interface{}) error {
	const op = "load config"

	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	resp, err := c.do(ctx, op, http.MethodPost, "/load", body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkResponse(resp, op)
}

// SetConfig writes the configuration at path. When token is non-empty the
// write is conditional: the If-Match header makes the instance reject it
// with a conflict if the configuration changed since the token was read.
// Returns the token captured from the response, which may be empty if the
// instance does not version write responses.
func (c *Client) SetConfig(ctx context.Context, path string, value interface{}, token string) (string, error) {
	const op = "set config"

	body, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+configPath(path), bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Endpoint: c.baseURL, Operation: op, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(etag.IfMatchHeader, token)
	}
	c.creds.apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Endpoint: c.baseURL, Operation: op, Cause: err}
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, op); err != nil {
		return "", err
	}

	return etag.Capture(resp.Header), nil
}

// PatchConfig merges value into the configuration at path. Partial writes
// carry no token semantics.
func (c *Client) PatchConfig(ctx context.Context, path string, value interface{}) error {
	const op = "patch config"

	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	resp, err := c.do(ctx, op, http.MethodPatch, configPath(path), body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkResponse(resp, op)
}

// DeleteConfig removes the configuration subtree at path.
func (c *Client) DeleteConfig(ctx context.Context, path string) error {
	const op = "delete config"

	resp, err := c.do(ctx, op, http.MethodDelete, configPath(path), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkResponse(resp, op)
}

// Adapt converts a human-authored configuration dialect into the structured
// form without applying it. The dialect selects the request content type
// (e.g. "caddyfile" -> "text/caddyfile").
func (c *Client) Adapt(ctx context.Context, text, dialect string) (interface{}, error) {
	const op = "adapt config"

	resp, err := c.do(ctx, op, http.MethodPost, "/adapt", []byte(text), dialectContentType(dialect))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, op); err != nil {
		return nil, err
	}

	var value interface{}
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return nil, &DecodeError{Operation: op, Cause: err}
	}

	return value, nil
}

// ListUpstreams returns the instance's current proxy upstreams.
func (c *Client) ListUpstreams(ctx context.Context) ([]Upstream, error) {
	const op = "list upstreams"

	resp, err := c.do(ctx, op, http.MethodGet, "/reverse_proxy/upstreams", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, op); err != nil {
		return nil, err
	}

	var upstreams []Upstream
	if err := json.NewDecoder(resp.Body).Decode(&upstreams); err != nil {
		return nil, &DecodeError{Operation: op, Cause: err}
	}

	return upstreams, nil
}

// GetPKIAuthority fetches information about one certificate authority.
func (c *Client) GetPKIAuthority(ctx context.Context, authorityID string) (*PKIAuthority, error) {
	const op = "get pki authority"

	resp, err := c.do(ctx, op, http.MethodGet, "/pki/ca/"+authorityID, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, op); err != nil {
		return nil, err
	}

	var authority PKIAuthority
	if err := json.NewDecoder(resp.Body).Decode(&authority); err != nil {
		return nil, &DecodeError{Operation: op, Cause: err}
	}

	return &authority, nil
}

// TestConnection issues a lightweight probe against the configuration root
// and measures round-trip time. Transport failures and bad statuses are
// reported in the result, never raised.
func (c *Client) TestConnection(ctx context.Context) ProbeResult {
	start := time.Now()

	resp, err := c.do(ctx, "probe", http.MethodGet, "/config/", nil, "")
	latency := time.Since(start)
	if err != nil {
		return ProbeResult{Healthy: false, Latency: latency, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ProbeResult{
			Healthy: false,
			Latency: latency,
			Message: fmt.Sprintf("probe returned status %d: %s", resp.StatusCode, readBody(resp)),
		}
	}

	return ProbeResult{Healthy: true, Latency: latency, Message: "ok"}
}

// dialectContentType maps a configuration dialect to its request content type.
func dialectContentType(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "", "caddyfile":
		return "text/caddyfile"
	case "json":
		return "application/json"
	default:
		return "text/" + strings.ToLower(dialect)
	}
}
