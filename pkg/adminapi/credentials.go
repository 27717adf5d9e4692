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
	"crypto/tls"
	"crypto/x509"
	"net/http"
)

// AuthType identifies the authentication scheme used against an instance's
// administrative API.
type AuthType string

const (
	// AuthNone disables authentication entirely.
	AuthNone AuthType = "none"

	// AuthBearer sends a bearer token in the Authorization header.
	AuthBearer AuthType = "bearer"

	// AuthBasic sends HTTP basic credentials.
	AuthBasic AuthType = "basic"

	// AuthMTLS presents a client certificate during the TLS handshake.
	// Unlike the header-based schemes this is configured on the transport
	// at client construction time, not per request.
	AuthMTLS AuthType = "mtls"
)

// Valid reports whether t is a known authentication scheme.
func (t AuthType) Valid() bool {
	switch t {
	case AuthNone, AuthBearer, AuthBasic, AuthMTLS:
		return true
	default:
		return false
	}
}

// Credentials holds the material for one authentication scheme. Which fields
// are meaningful is determined by Type; AuthNone carries no payload.
type Credentials struct {
	Type AuthType

	// Token is the bearer token (AuthBearer).
	Token string

	// Username and Password are HTTP basic credentials (AuthBasic).
	Username string
	Password string

	// ClientCertPEM and ClientKeyPEM are the PEM-encoded client certificate
	// and key (AuthMTLS).
	ClientCertPEM []byte
	ClientKeyPEM  []byte

	// CACertPEM optionally pins the CA used to verify the instance's
	// server certificate (AuthMTLS).
	CACertPEM []byte
}

// apply attaches header-based credentials to an outbound request. It is a
// no-op for AuthNone and AuthMTLS (the latter authenticates on the
// transport, not per request).
func (c Credentials) apply(req *http.Request) {
	switch c.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.Token)
	case AuthBasic:
		req.SetBasicAuth(c.Username, c.Password)
	case AuthNone, AuthMTLS:
		// nothing to attach per request
	}
}

// validate checks that the credential payload matches the declared scheme.
// mTLS without certificate material is a hard error: silently falling back
// to an unauthenticated transport would defeat the scheme.
func (c Credentials) validate() error {
	switch c.Type {
	case AuthNone:
		return nil
	case AuthBearer:
		if c.Token == "" {
			return &CredentialError{AuthType: c.Type, Reason: "token is empty"}
		}
	case AuthBasic:
		if c.Username == "" {
			return &CredentialError{AuthType: c.Type, Reason: "username is empty"}
		}
	case AuthMTLS:
		if len(c.ClientCertPEM) == 0 || len(c.ClientKeyPEM) == 0 {
			return &CredentialError{AuthType: c.Type, Reason: "client certificate or key is missing"}
		}
	default:
		return &CredentialError{AuthType: c.Type, Reason: "unknown authentication scheme"}
	}
	return nil
}

// tlsConfig builds the TLS configuration for an mTLS transport. Returns nil
// for every other scheme.
func (c Credentials) tlsConfig() (*tls.Config, error) {
	if c.Type != AuthMTLS {
		return nil, nil
	}

	cert, err := tls.X509KeyPair(c.ClientCertPEM, c.ClientKeyPEM)
	if err != nil {
		return nil, &CredentialError{AuthType: c.Type, Reason: "failed to parse client certificate: " + err.Error()}
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if len(c.CACertPEM) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(c.CACertPEM) {
			return nil, &CredentialError{AuthType: c.Type, Reason: "failed to parse CA certificate"}
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
