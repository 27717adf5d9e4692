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

import "fmt"

// TransportError represents a failure to reach the administrative API at all:
// connection refused, DNS failure, timeout, TLS handshake failure.
type TransportError struct {
	// Endpoint is the URL that failed to connect
	Endpoint string

	// Operation names the admin API operation that was attempted
	Operation string

	// Cause is the underlying network error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: failed to reach admin API at %s: %v", e.Operation, e.Endpoint, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// UpstreamError represents a non-2xx response from the administrative API.
// The raw response body is preserved verbatim so an operator can tell
// connectivity, authentication and configuration-syntax problems apart.
type UpstreamError struct {
	// Operation names the admin API operation that was attempted
	Operation string

	// StatusCode is the HTTP status the instance returned
	StatusCode int

	// Detail is the raw response body
	Detail string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Detail)
}

// DecodeError represents a syntactically invalid response body from the
// administrative API.
type DecodeError struct {
	// Operation names the admin API operation that was attempted
	Operation string

	// Cause is the underlying decoding error
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response from admin API: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// CredentialError represents unusable credential material, detected at
// client construction time (e.g. mTLS configured without a certificate).
type CredentialError struct {
	// AuthType is the configured authentication scheme
	AuthType AuthType

	// Reason describes what is missing or malformed
	Reason string
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	return fmt.Sprintf("invalid %s credentials: %s", e.AuthType, e.Reason)
}
