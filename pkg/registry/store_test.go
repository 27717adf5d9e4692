package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caddy-fleet/pkg/adminapi"
	"caddy-fleet/pkg/templating"
)

// storeUnderTest runs the same contract checks against every Store
// implementation.
func storeUnderTest(t *testing.T, open func(t *testing.T) Store) {
	t.Helper()

	t.Run("instance round trip", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		instance := &Instance{
			ID:       "inst-1",
			Name:     "edge-1",
			AdminURL: "http://10.0.0.5:2019",
			AuthType: adminapi.AuthBearer,
			Token:    "s3cret",
			Status:   StatusUnknown,
		}
		require.NoError(t, store.CreateInstance(instance))

		got, err := store.GetInstance("inst-1")
		require.NoError(t, err)
		assert.Equal(t, "edge-1", got.Name)
		assert.Equal(t, adminapi.AuthBearer, got.AuthType)
		assert.Equal(t, "s3cret", got.Token)
	})

	t.Run("get unknown instance", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		_, err := store.GetInstance("missing")
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, KindInstance, notFound.Kind)
	})

	t.Run("update replaces record", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		instance := &Instance{ID: "inst-1", Name: "edge-1", AdminURL: "http://a:2019", AuthType: adminapi.AuthNone}
		require.NoError(t, store.CreateInstance(instance))

		instance.Status = StatusHealthy
		instance.LastSeen = time.Now().UTC()
		require.NoError(t, store.UpdateInstance(instance))

		got, err := store.GetInstance("inst-1")
		require.NoError(t, err)
		assert.Equal(t, StatusHealthy, got.Status)
		assert.False(t, got.LastSeen.IsZero())
	})

	t.Run("list and delete", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		require.NoError(t, store.CreateInstance(&Instance{ID: "a", Name: "a", AdminURL: "http://a:2019", AuthType: adminapi.AuthNone}))
		require.NoError(t, store.CreateInstance(&Instance{ID: "b", Name: "b", AdminURL: "http://b:2019", AuthType: adminapi.AuthNone}))

		instances, err := store.ListInstances()
		require.NoError(t, err)
		assert.Len(t, instances, 2)

		require.NoError(t, store.DeleteInstance("a"))

		instances, err = store.ListInstances()
		require.NoError(t, err)
		assert.Len(t, instances, 1)

		var notFound *NotFoundError
		assert.ErrorAs(t, store.DeleteInstance("a"), &notFound)
	})

	t.Run("template round trip", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		template := &templating.Template{
			ID:     "tpl-1",
			Name:   "reverse-proxy",
			Config: map[string]interface{}{"listen": "{{ addr }}"},
			Variables: []templating.VariableDecl{
				{Name: "addr", Type: templating.TypeString, Required: true},
			},
		}
		require.NoError(t, store.CreateTemplate(template))

		got, err := store.GetTemplate("tpl-1")
		require.NoError(t, err)
		assert.Equal(t, "reverse-proxy", got.Name)
		require.Len(t, got.Variables, 1)
		assert.Equal(t, templating.TypeString, got.Variables[0].Type)

		require.NoError(t, store.DeleteTemplate("tpl-1"))

		_, err = store.GetTemplate("tpl-1")
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, KindTemplate, notFound.Kind)
	})
}

func TestBoltStore(t *testing.T) {
	storeUnderTest(t, func(t *testing.T) Store {
		store, err := NewBoltStore(t.TempDir())
		require.NoError(t, err)
		return store
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.CreateInstance(&Instance{ID: "inst-1", Name: "edge-1", AdminURL: "http://a:2019", AuthType: adminapi.AuthNone}))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetInstance("inst-1")
	require.NoError(t, err)
	assert.Equal(t, "edge-1", got.Name)
}

func TestInstanceValidate(t *testing.T) {
	tests := []struct {
		name     string
		instance Instance
		wantErr  bool
	}{
		{
			"valid bearer",
			Instance{Name: "a", AdminURL: "http://a:2019", AuthType: adminapi.AuthBearer, Token: "t"},
			false,
		},
		{
			"missing name",
			Instance{AdminURL: "http://a:2019", AuthType: adminapi.AuthNone},
			true,
		},
		{
			"missing admin URL",
			Instance{Name: "a", AuthType: adminapi.AuthNone},
			true,
		},
		{
			"unknown auth type",
			Instance{Name: "a", AdminURL: "http://a:2019", AuthType: adminapi.AuthType("oauth2")},
			true,
		},
		{
			"none must not carry credentials",
			Instance{Name: "a", AdminURL: "http://a:2019", AuthType: adminapi.AuthNone, Token: "t"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.instance.Validate()
			if tt.wantErr {
				var invalid *InvalidRecordError
				require.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInstanceCredentials(t *testing.T) {
	instance := Instance{
		AuthType: adminapi.AuthBasic,
		Username: "admin",
		Password: "hunter2",
	}

	creds := instance.Credentials()
	assert.Equal(t, adminapi.AuthBasic, creds.Type)
	assert.Equal(t, "admin", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)
}
