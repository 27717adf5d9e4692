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

package fleet

import (
	"context"
	"errors"

	"caddy-fleet/pkg/adminapi"
	"caddy-fleet/pkg/etag"
	"caddy-fleet/pkg/registry"
	"caddy-fleet/pkg/templating"
)

// Error codes carried by OperationError. Stable identifiers for callers
// that map outcomes to HTTP statuses or metrics labels.
const (
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodeTransport  = "transport_error"
	CodeUpstream   = "upstream_error"
	CodeCredential = "credential_error"
	CodeDecode     = "decode_error"
	CodeValidation = "validation_error"
	CodeCanceled   = "canceled"
	CodeInternal   = "internal_error"
)

// OperationError is the structured failure half of an OperationResult.
type OperationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// OperationResult is the outcome of one configuration operation against one
// instance. Exactly one of Value and Error is meaningful.
type OperationResult struct {
	Success bool            `json:"success"`
	Value   interface{}     `json:"value,omitempty"`
	Token   string          `json:"token,omitempty"`
	Error   *OperationError `json:"error,omitempty"`
}

// SuccessResult builds a successful OperationResult carrying a payload.
func SuccessResult(value interface{}, token string) OperationResult {
	return OperationResult{Success: true, Value: value, Token: token}
}

// FailureResult builds a failed OperationResult from an error, classifying
// it into a stable code.
func FailureResult(err error) OperationResult {
	return OperationResult{Success: false, Error: ClassifyError(err)}
}

// BulkResult maps each target instance identifier to its own outcome.
// AllSucceeded is true only when every individual invocation succeeded; an
// empty target set is vacuously successful.
type BulkResult struct {
	Results      map[string]OperationResult `json:"results"`
	AllSucceeded bool                       `json:"all_succeeded"`
}

// FailureCount returns the number of failed per-instance outcomes.
func (r *BulkResult) FailureCount() int {
	failed := 0
	for _, result := range r.Results {
		if !result.Success {
			failed++
		}
	}
	return failed
}

// ClassifyError maps an error from the registry, the admin client or the
// token manager onto a structured OperationError.
func ClassifyError(err error) *OperationError {
	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		return &OperationError{Code: CodeNotFound, Message: err.Error()}
	}

	var conflict *etag.ConflictError
	if errors.As(err, &conflict) {
		return &OperationError{Code: CodeConflict, Message: err.Error(), Detail: conflict.Detail}
	}

	var credential *adminapi.CredentialError
	if errors.As(err, &credential) {
		return &OperationError{Code: CodeCredential, Message: err.Error()}
	}

	var upstream *adminapi.UpstreamError
	if errors.As(err, &upstream) {
		return &OperationError{Code: CodeUpstream, Message: err.Error(), Detail: upstream.Detail}
	}

	var decode *adminapi.DecodeError
	if errors.As(err, &decode) {
		return &OperationError{Code: CodeDecode, Message: err.Error()}
	}

	var invalid *registry.InvalidRecordError
	if errors.As(err, &invalid) {
		return &OperationError{Code: CodeValidation, Message: err.Error()}
	}

	var bindings *templating.ValidationError
	if errors.As(err, &bindings) {
		return &OperationError{Code: CodeValidation, Message: err.Error()}
	}

	var structural *templating.StructuralError
	if errors.As(err, &structural) {
		return &OperationError{Code: CodeValidation, Message: err.Error()}
	}

	var transport *adminapi.TransportError
	if errors.As(err, &transport) {
		// Context cancellation surfaces through the transport; report it
		// as its own code so bulk callers can tell aborted from failed.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &OperationError{Code: CodeCanceled, Message: err.Error()}
		}
		return &OperationError{Code: CodeTransport, Message: err.Error()}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &OperationError{Code: CodeCanceled, Message: err.Error()}
	}

	return &OperationError{Code: CodeInternal, Message: err.Error()}
}
