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

// Package httpapi exposes the orchestrator to operators over a JSON HTTP
// API. Every response uses the envelope {success, data?, error?}; errors
// carry a stable code, a human message and the raw upstream detail.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"caddy-fleet/pkg/fleet"
	"caddy-fleet/pkg/registry"
)

// Config contains configuration options for creating a Server.
type Config struct {
	// Addr is the TCP address to listen on (e.g., ":8080")
	Addr string

	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string

	// Manager is the single-instance orchestrator. Required.
	Manager *fleet.Manager

	// Coordinator fans bulk operations out. Required.
	Coordinator *fleet.BulkCoordinator

	// Store resolves template records. Required.
	Store registry.Store

	// Logger for request and server logging. Required.
	Logger *slog.Logger
}

// Server is the operator-facing HTTP API server.
type Server struct {
	addr   string
	engine *gin.Engine
	server *http.Server
	logger *slog.Logger
	api    *api
}

// api carries the handler dependencies.
type api struct {
	manager     *fleet.Manager
	coordinator *fleet.BulkCoordinator
	store       registry.Store
	logger      *slog.Logger
}

// NewServer creates a new Server with all routes registered.
//
// Parameters:
//   - cfg: server configuration (address, CORS, orchestration dependencies)
//
// Returns the Server.
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	logger := cfg.Logger.With("component", "http-api")
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "If-Match")
		corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, "Etag")
		engine.Use(cors.New(corsCfg))
	}

	a := &api{
		manager:     cfg.Manager,
		coordinator: cfg.Coordinator,
		store:       cfg.Store,
		logger:      logger,
	}
	a.registerRoutes(engine)

	return &Server{
		addr:   cfg.Addr,
		engine: engine,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
		api:    a,
	}
}

// Handler returns the HTTP handler with all routes mounted. Exposed for
// in-process testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server and blocks until the context is cancelled.
// Shutdown is graceful, waiting up to 10 seconds for active requests.
func (s *Server) Start(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		s.logger.Info("starting api server", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("api server error", "error", err)
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("api server shutting down", "reason", ctx.Err())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("api server stopped")
		return nil

	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}
}

// registerRoutes mounts the full route table.
func (a *api) registerRoutes(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		respondOK(c, http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/instances", a.listInstances)
	engine.POST("/instances", a.createInstance)

	instance := engine.Group("/instances/:id")
	{
		instance.GET("", a.getInstance)
		instance.PUT("", a.updateInstance)
		instance.DELETE("", a.deleteInstance)
		instance.POST("/test-connection", a.testConnection)

		instance.GET("/config", a.getConfig)
		instance.GET("/config/*path", a.getConfig)
		instance.POST("/config", a.setConfig)
		instance.POST("/config/*path", a.setConfig)
		instance.PATCH("/config", a.patchConfig)
		instance.PATCH("/config/*path", a.patchConfig)
		instance.DELETE("/config/*path", a.deleteConfig)

		instance.POST("/load", a.loadConfig)
		instance.POST("/adapt", a.adapt)
		instance.GET("/upstreams", a.listUpstreams)
		instance.GET("/pki/ca/:ca_id", a.getPKIAuthority)
	}

	bulk := engine.Group("/bulk")
	{
		bulk.POST("/config-update", a.bulkConfigUpdate)
		bulk.POST("/template-apply", a.bulkTemplateApply)
	}

	engine.GET("/templates", a.listTemplates)
	engine.POST("/templates", a.createTemplate)
	template := engine.Group("/templates/:id")
	{
		template.GET("", a.getTemplate)
		template.PUT("", a.updateTemplate)
		template.DELETE("", a.deleteTemplate)
		template.POST("/generate", a.generateTemplate)
	}
}
