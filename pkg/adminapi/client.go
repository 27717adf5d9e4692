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

// Package adminapi provides a typed client for the JSON administrative HTTP
// API exposed by each managed web-server instance.
//
// This wrapper adds:
// - Pluggable authentication (none, bearer, basic, mutual TLS)
// - A per-call timeout
// - Configuration read/write operations with ETag capture
// - Typed error handling; the client never retries
package adminapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single admin API call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Config contains configuration options for creating a Client.
type Config struct {
	// BaseURL is the instance's administrative endpoint
	// (e.g., "http://10.0.0.5:2019")
	BaseURL string

	// Credentials selects and parameterizes the authentication scheme.
	// The zero value means no authentication.
	Credentials Credentials

	// Timeout bounds every single call. Zero means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// When set, Timeout and mTLS transport configuration are the caller's
	// responsibility.
	HTTPClient *http.Client
}

// Client is a typed wrapper around one instance's administrative API.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
}

// New creates a new Client with the provided configuration.
//
// mTLS transport setup happens here; missing certificate material fails
// construction rather than silently degrading to an unauthenticated client.
//
// Example:
//
//	client, err := adminapi.New(adminapi.Config{
//	    BaseURL: "http://10.0.0.5:2019",
//	    Credentials: adminapi.Credentials{
//	        Type:  adminapi.AuthBearer,
//	        Token: "s3cret",
//	    },
//	})
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &CredentialError{AuthType: cfg.Credentials.Type, Reason: "base URL is required"}
	}

	creds := cfg.Credentials
	if creds.Type == "" {
		creds.Type = AuthNone
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}

		tlsCfg, err := creds.tlsConfig()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			httpClient.Transport = &http.Transport{TLSClientConfig: tlsCfg}
		}
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		creds:   creds,
		http:    httpClient,
	}, nil
}

// BaseURL returns the configured administrative endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do builds, authenticates and executes one request against the admin API.
// body may be nil. Transport failures are wrapped in TransportError; the
// caller owns the response body.
func (c *Client) do(ctx context.Context, operation, method, path string, body []byte, contentType string) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Endpoint: c.baseURL, Operation: operation, Cause: err}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.creds.apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: c.baseURL, Operation: operation, Cause: err}
	}

	return resp, nil
}

// readBody drains and returns the response body as a string, tolerating
// read failures (the status code is the primary signal at that point).
func readBody(resp *http.Response) string {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
