package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caddy-fleet/pkg/adminapi"
	"caddy-fleet/pkg/etag"
	"caddy-fleet/pkg/events"
	"caddy-fleet/pkg/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T) (*Manager, registry.Store) {
	t.Helper()

	store := registry.NewMemoryStore()
	bus := events.NewEventBus(10)
	bus.Start()

	manager := NewManager(ManagerConfig{
		Store:  store,
		Bus:    bus,
		Logger: testLogger(),
	})
	return manager, store
}

// newInstanceServer runs a fake admin endpoint with versioned configuration.
func newInstanceServer(t *testing.T) *httptest.Server {
	t.Helper()

	version := 1
	var config interface{} = map[string]interface{}{"apps": map[string]interface{}{}}
	token := func() string { return `"v` + string(rune('0'+version)) + `"` }

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Etag", token())
			_ = json.NewEncoder(w).Encode(config)
		case http.MethodPost:
			if match := r.Header.Get("If-Match"); match != "" && match != token() {
				http.Error(w, "version mismatch", http.StatusPreconditionFailed)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&config)
			version++
			w.Header().Set("Etag", token())
		case http.MethodDelete:
			version++
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func addTestInstance(t *testing.T, manager *Manager, name, url string) *registry.Instance {
	t.Helper()
	instance := &registry.Instance{Name: name, AdminURL: url, AuthType: adminapi.AuthNone}
	require.NoError(t, manager.AddInstance(instance))
	return instance
}

func TestAddInstanceGeneratesIDAndDefaults(t *testing.T) {
	manager, _ := newTestManager(t)

	instance := addTestInstance(t, manager, "edge-1", "http://10.0.0.5:2019")

	assert.NotEmpty(t, instance.ID)
	assert.Equal(t, registry.StatusUnknown, instance.Status)
	assert.False(t, instance.CreatedAt.IsZero())

	got, err := manager.GetInstance(instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "edge-1", got.Name)
}

func TestAddInstanceRejectsInvalidRecord(t *testing.T) {
	manager, _ := newTestManager(t)

	err := manager.AddInstance(&registry.Instance{Name: "edge-1", AuthType: adminapi.AuthNone})

	var invalid *registry.InvalidRecordError
	require.ErrorAs(t, err, &invalid)
}

func TestUpdateInstancePreservesCreatedAt(t *testing.T) {
	manager, _ := newTestManager(t)
	instance := addTestInstance(t, manager, "edge-1", "http://10.0.0.5:2019")
	created := instance.CreatedAt

	instance.Name = "edge-1-renamed"
	require.NoError(t, manager.UpdateInstance(instance))

	got, err := manager.GetInstance(instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "edge-1-renamed", got.Name)
	assert.Equal(t, created, got.CreatedAt)
}

func TestUpdateInstancePreservesProbeState(t *testing.T) {
	manager, store := newTestManager(t)
	srv := newInstanceServer(t)
	instance := addTestInstance(t, manager, "edge-1", srv.URL)

	_, err := manager.TestConnection(context.Background(), instance.ID)
	require.NoError(t, err)

	// An update request carries no probe fields; the rebuilt record
	// arrives with zero Status and LastSeen.
	update := &registry.Instance{
		ID:       instance.ID,
		Name:     "edge-1-renamed",
		AdminURL: srv.URL,
		AuthType: adminapi.AuthNone,
	}
	require.NoError(t, manager.UpdateInstance(update))

	got, err := store.GetInstance(instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "edge-1-renamed", got.Name)
	assert.Equal(t, registry.StatusHealthy, got.Status)
	assert.False(t, got.LastSeen.IsZero())
}

func TestUpdateUnknownInstance(t *testing.T) {
	manager, _ := newTestManager(t)

	err := manager.UpdateInstance(&registry.Instance{
		ID: "missing", Name: "x", AdminURL: "http://a:2019", AuthType: adminapi.AuthNone,
	})

	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteInstance(t *testing.T) {
	manager, _ := newTestManager(t)
	instance := addTestInstance(t, manager, "edge-1", "http://10.0.0.5:2019")

	require.NoError(t, manager.DeleteInstance(instance.ID))

	_, err := manager.GetInstance(instance.ID)
	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetConfigUnknownInstanceIsNotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, _, err := manager.GetConfig(context.Background(), "missing", "")

	// Resolution failure must stay distinct from connectivity failure.
	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)
	var transport *adminapi.TransportError
	assert.False(t, errors.As(err, &transport))
}

func TestReadModifyWriteRotatesToken(t *testing.T) {
	manager, _ := newTestManager(t)
	srv := newInstanceServer(t)
	instance := addTestInstance(t, manager, "edge-1", srv.URL)
	ctx := context.Background()

	_, t1, err := manager.GetConfig(ctx, instance.ID, "")
	require.NoError(t, err)
	require.NotEmpty(t, t1)

	t2, err := manager.SetConfig(ctx, instance.ID, "", map[string]interface{}{"apps": "new"}, t1)
	require.NoError(t, err)
	assert.NotEmpty(t, t2)
	assert.NotEqual(t, t1, t2)
}

func TestStaleTokenIsRejected(t *testing.T) {
	manager, _ := newTestManager(t)
	srv := newInstanceServer(t)
	instance := addTestInstance(t, manager, "edge-1", srv.URL)
	ctx := context.Background()

	_, t1, err := manager.GetConfig(ctx, instance.ID, "")
	require.NoError(t, err)

	_, err = manager.SetConfig(ctx, instance.ID, "", map[string]interface{}{"a": 1}, t1)
	require.NoError(t, err)

	// The first write advanced the instance; t1 is now stale.
	_, err = manager.SetConfig(ctx, instance.ID, "", map[string]interface{}{"b": 2}, t1)
	var conflict *etag.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestUpdateInstanceInvalidatesCachedClient(t *testing.T) {
	manager, _ := newTestManager(t)
	oldSrv := newInstanceServer(t)
	newSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Etag", `"fresh"`)
		_, _ = w.Write([]byte(`{"moved": true}`))
	}))
	t.Cleanup(newSrv.Close)

	instance := addTestInstance(t, manager, "edge-1", oldSrv.URL)
	ctx := context.Background()

	_, _, err := manager.GetConfig(ctx, instance.ID, "")
	require.NoError(t, err)

	instance.AdminURL = newSrv.URL
	require.NoError(t, manager.UpdateInstance(instance))

	value, _, err := manager.GetConfig(ctx, instance.ID, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"moved": true}, value)
}

func TestTestConnectionRecordsStatus(t *testing.T) {
	manager, store := newTestManager(t)
	srv := newInstanceServer(t)
	healthy := addTestInstance(t, manager, "up", srv.URL)
	down := addTestInstance(t, manager, "down", "http://127.0.0.1:1")
	ctx := context.Background()

	result, err := manager.TestConnection(ctx, healthy.ID)
	require.NoError(t, err)
	assert.True(t, result.Healthy)

	result, err = manager.TestConnection(ctx, down.ID)
	require.NoError(t, err)
	assert.False(t, result.Healthy)
	assert.NotEmpty(t, result.Message)

	got, err := store.GetInstance(healthy.ID)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusHealthy, got.Status)
	assert.False(t, got.LastSeen.IsZero())

	got, err = store.GetInstance(down.ID)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusUnreachable, got.Status)
}

func TestTestConnectionUnknownInstance(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.TestConnection(context.Background(), "missing")

	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
