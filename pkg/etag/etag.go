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

// Package etag implements optimistic concurrency bookkeeping for instance
// configuration, based on the opaque version token (ETag) that the
// administrative API attaches to configuration reads.
//
// The package is pure bookkeeping: it captures tokens from response headers
// and decides whether a conditional write may proceed. It performs no I/O.
// Conflicts are a distinct outcome so that callers can offer "reload",
// "overwrite" or "diff" choices instead of a flat error.
package etag

import (
	"fmt"
	"net/http"
)

// HeaderName is the response header carrying the configuration version token.
const HeaderName = "Etag"

// IfMatchHeader is the request header carrying the token a conditional
// write was predicated on.
const IfMatchHeader = "If-Match"

// Outcome is the result of validating a supplied token against the
// instance's current token.
type Outcome int

const (
	// OutcomeProceed means the write may be dispatched.
	OutcomeProceed Outcome = iota

	// OutcomeConflict means the supplied token is stale and the write must
	// be rejected, never silently merged.
	OutcomeConflict
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeProceed:
		return "proceed"
	case OutcomeConflict:
		return "conflict"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Capture extracts the configuration version token from response headers.
// Returns the empty string when the header is absent.
func Capture(headers http.Header) string {
	if headers == nil {
		return ""
	}
	return headers.Get(HeaderName)
}

// Validate decides whether a write predicated on supplied may proceed given
// the instance's current token.
//
// The write conflicts only when both tokens are present and unequal. An
// absent supplied token means an unconditional write; an absent current
// token means the instance does not version this resource.
func Validate(supplied, current string) Outcome {
	if supplied == "" || current == "" {
		return OutcomeProceed
	}
	if supplied != current {
		return OutcomeConflict
	}
	return OutcomeProceed
}

// ConflictError reports a stale concurrency token. It is a distinct error
// category from every other failure so callers can react to lost updates
// specifically.
type ConflictError struct {
	// Supplied is the token the caller predicated its write on.
	Supplied string

	// Current is the token the instance reported at validation time.
	// Empty when the conflict was detected remotely (412 response).
	Current string

	// Detail carries the raw upstream response body, if any.
	Detail string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Current != "" {
		return fmt.Sprintf("configuration changed since it was read: supplied token %q, current token %q", e.Supplied, e.Current)
	}
	return fmt.Sprintf("configuration changed since it was read: token %q is stale", e.Supplied)
}
