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

// Package registry persists the records the orchestrator manages: the
// instances of the fleet and the configuration templates operators author.
// It is a plain record store; all protocol and concurrency semantics live
// in the packages that consume it.
package registry

import (
	"time"

	"caddy-fleet/pkg/adminapi"
)

// Status is an instance's last known reachability.
type Status string

const (
	// StatusUnknown means the instance has never been probed.
	StatusUnknown Status = "unknown"

	// StatusHealthy means the last probe succeeded.
	StatusHealthy Status = "healthy"

	// StatusUnreachable means the last probe failed.
	StatusUnreachable Status = "unreachable"
)

// Instance is one managed web-server instance.
//
// AuthType determines which credential fields are meaningful: bearer uses
// Token, basic uses Username/Password, mTLS uses the PEM fields, and none
// carries no credential payload at all.
type Instance struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// AdminURL is the instance's administrative endpoint
	// (e.g., "http://10.0.0.5:2019")
	AdminURL string `json:"admin_url"`

	AuthType adminapi.AuthType `json:"auth_type"`

	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	ClientCertPEM []byte `json:"client_cert_pem,omitempty"`
	ClientKeyPEM  []byte `json:"client_key_pem,omitempty"`
	CACertPEM     []byte `json:"ca_cert_pem,omitempty"`

	Status   Status    `json:"status"`
	LastSeen time.Time `json:"last_seen,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credentials assembles the admin API credentials for this instance.
func (i *Instance) Credentials() adminapi.Credentials {
	return adminapi.Credentials{
		Type:          i.AuthType,
		Token:         i.Token,
		Username:      i.Username,
		Password:      i.Password,
		ClientCertPEM: i.ClientCertPEM,
		ClientKeyPEM:  i.ClientKeyPEM,
		CACertPEM:     i.CACertPEM,
	}
}

// Validate checks the record's own consistency. Reachability of AdminURL is
// out of scope here; probing handles that.
func (i *Instance) Validate() error {
	if i.Name == "" {
		return &InvalidRecordError{Kind: KindInstance, Reason: "name is required"}
	}
	if i.AdminURL == "" {
		return &InvalidRecordError{Kind: KindInstance, Reason: "admin URL is required"}
	}
	if !i.AuthType.Valid() {
		return &InvalidRecordError{Kind: KindInstance, Reason: "unknown auth type: " + string(i.AuthType)}
	}
	if i.AuthType == adminapi.AuthNone {
		if i.Token != "" || i.Username != "" || i.Password != "" ||
			len(i.ClientCertPEM) > 0 || len(i.ClientKeyPEM) > 0 {
			return &InvalidRecordError{Kind: KindInstance, Reason: "auth type none must not carry credentials"}
		}
	}
	return nil
}
