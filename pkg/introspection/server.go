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

package introspection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	//nolint:gosec // G108: pprof intentionally exposed for debugging
	_ "net/http/pprof" // Register pprof handlers
)

// Server serves debug variables over HTTP.
//
// Endpoints:
//   - GET /debug/vars                       list all variable paths
//   - GET /debug/vars/all                   all variables in one object
//   - GET /debug/vars/{path}                one variable
//   - GET /debug/vars/{path}?field={.expr}  one field of a variable
//   - GET /healthz                          health check
//   - GET /debug/pprof/*                    Go profiling (import side effect)
//
// The server runs in its own goroutine and shuts down gracefully when the
// context passed to Start is cancelled.
type Server struct {
	addr     string
	registry *Registry
	server   *http.Server
	logger   *slog.Logger
}

// NewServer creates a debug server for the given registry.
//
// Parameters:
//   - addr: TCP address to listen on (e.g., ":6060")
//   - registry: the variable registry to serve
func NewServer(addr string, registry *Registry) *Server {
	s := &Server{
		addr:     addr,
		registry: registry,
		logger:   slog.Default().With("component", "debug-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/vars", s.handleIndex)
	mux.HandleFunc("/debug/vars/", s.handleVar)
	mux.HandleFunc("/healthz", s.handleHealth)
	// pprof registers on the default mux; delegate its subtree there.
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	mux.HandleFunc("/", s.handleNotFound)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Start runs the server until ctx is cancelled, then shuts it down
// gracefully with a bounded timeout.
func (s *Server) Start(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		s.logger.Info("Starting debug server", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Debug server error", "error", err)
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Debug server shutting down", "reason", ctx.Err())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Debug server shutdown error", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("Debug server stopped")
		return nil

	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// handleIndex lists all registered variable paths.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "only GET is allowed")
		return
	}

	paths := s.registry.Paths()

	writeJSON(w, map[string]interface{}{
		"paths": paths,
		"count": len(paths),
	})
}

// handleVar serves one variable by path, with optional JSONPath field
// selection via the "field" query parameter. The reserved path "all"
// resolves every variable at once.
func (s *Server) handleVar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "only GET is allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/debug/vars/")

	if path == "" || path == "/" {
		s.handleIndex(w, r)
		return
	}

	if path == "all" {
		allVars, err := s.registry.All()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, allVars)
		return
	}

	value, err := s.registry.GetWithField(path, fieldQuery(r))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, value)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "only GET is allowed")
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("path %q not found", r.URL.Path))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; the status code cannot change here.
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	//nolint:errchkjson // Error handler itself, nowhere to report encoding errors
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
