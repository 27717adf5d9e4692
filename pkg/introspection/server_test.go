package introspection

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry := NewRegistry()
	registry.Publish("uptime", Func(func() (interface{}, error) {
		return "42s", nil
	}))
	registry.Publish("fleet/instances", Func(func() (interface{}, error) {
		return map[string]interface{}{
			"count": 2,
			"instances": []map[string]string{
				{"name": "edge-1", "status": "healthy"},
				{"name": "edge-2", "status": "unknown"},
			},
		}, nil
	}))

	return NewServer(":0", registry)
}

func doGet(t *testing.T, server *Server, path string) (*httptest.ResponseRecorder, interface{}) {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	server.Handler().ServeHTTP(rec, req)

	var body interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}

	return rec, body
}

func TestServerIndexListsPaths(t *testing.T) {
	server := newTestServer(t)

	rec, body := doGet(t, server, "/debug/vars")
	require.Equal(t, http.StatusOK, rec.Code)

	index := body.(map[string]interface{})
	assert.Equal(t, float64(2), index["count"])
	assert.ElementsMatch(t, []interface{}{"fleet/instances", "uptime"}, index["paths"])
}

func TestServerSingleVariable(t *testing.T) {
	server := newTestServer(t)

	rec, body := doGet(t, server, "/debug/vars/uptime")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42s", body)
}

func TestServerHierarchicalPath(t *testing.T) {
	server := newTestServer(t)

	rec, body := doGet(t, server, "/debug/vars/fleet/instances")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body.(map[string]interface{})["count"])
}

func TestServerFieldSelection(t *testing.T) {
	server := newTestServer(t)

	rec, body := doGet(t, server, "/debug/vars/fleet/instances?field={.instances[0].name}")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edge-1", body)
}

func TestServerAllVariables(t *testing.T) {
	server := newTestServer(t)

	rec, body := doGet(t, server, "/debug/vars/all")
	require.Equal(t, http.StatusOK, rec.Code)

	all := body.(map[string]interface{})
	assert.Len(t, all, 2)
	assert.Equal(t, "42s", all["uptime"])
}

func TestServerUnknownVariable(t *testing.T) {
	server := newTestServer(t)

	rec, body := doGet(t, server, "/debug/vars/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body.(map[string]interface{})["error"], "not found")
}

func TestServerUnknownPath(t *testing.T) {
	server := newTestServer(t)

	rec, _ := doGet(t, server, "/not/a/route")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerHealth(t *testing.T) {
	server := newTestServer(t)

	rec, body := doGet(t, server, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.(map[string]interface{})["status"])
}

func TestServerRejectsNonGet(t *testing.T) {
	server := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/debug/vars/uptime", nil)
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
