package adminapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTypeValid(t *testing.T) {
	assert.True(t, AuthNone.Valid())
	assert.True(t, AuthBearer.Valid())
	assert.True(t, AuthBasic.Valid())
	assert.True(t, AuthMTLS.Valid())
	assert.False(t, AuthType("oauth2").Valid())
	assert.False(t, AuthType("").Valid())
}

func TestApplyNone(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.test/config/", http.NoBody)
	require.NoError(t, err)

	Credentials{Type: AuthNone}.apply(req)

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestApplyBearer(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.test/config/", http.NoBody)
	require.NoError(t, err)

	Credentials{Type: AuthBearer, Token: "s3cret"}.apply(req)

	assert.Equal(t, "Bearer s3cret", req.Header.Get("Authorization"))
}

func TestApplyBasic(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.test/config/", http.NoBody)
	require.NoError(t, err)

	Credentials{Type: AuthBasic, Username: "admin", Password: "hunter2"}.apply(req)

	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "hunter2", pass)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"none is always valid", Credentials{Type: AuthNone}, false},
		{"bearer with token", Credentials{Type: AuthBearer, Token: "t"}, false},
		{"bearer without token", Credentials{Type: AuthBearer}, true},
		{"basic with username", Credentials{Type: AuthBasic, Username: "u"}, false},
		{"basic without username", Credentials{Type: AuthBasic}, true},
		{"mtls without material", Credentials{Type: AuthMTLS}, true},
		{"unknown scheme", Credentials{Type: AuthType("oauth2")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.validate()
			if tt.wantErr {
				require.Error(t, err)
				var credErr *CredentialError
				assert.ErrorAs(t, err, &credErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTLSConfigOnlyForMTLS(t *testing.T) {
	cfg, err := Credentials{Type: AuthBasic, Username: "u"}.tlsConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestTLSConfigRejectsGarbagePEM(t *testing.T) {
	creds := Credentials{
		Type:          AuthMTLS,
		ClientCertPEM: []byte("not a certificate"),
		ClientKeyPEM:  []byte("not a key"),
	}

	_, err := creds.tlsConfig()
	require.Error(t, err)
	var credErr *CredentialError
	assert.ErrorAs(t, err, &credErr)
}
