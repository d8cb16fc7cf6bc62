// Package http exposes the update endpoint over HTTP. It only parses
// parameters and serializes results; every decision lives in reconcile.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/porkdyn/porkdyn/geoip"
	"github.com/porkdyn/porkdyn/reconcile"
)

// ServerConfig holds the configuration for the HTTP server.
type ServerConfig struct {
	Listen string
}

// Server is the HTTP front end of the update service.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
}

// NewServer creates a new HTTP server wired to the given orchestrator.
// geo may be nil to disable country annotation in request logs.
func NewServer(cfg ServerConfig, orch *reconcile.Orchestrator, geo geoip.CountryLookup) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggingMiddleware(geo))

	engine.GET("/health", HealthHandler)
	engine.GET("/status", StatusHandler)

	h := NewUpdateHandler(orch)
	engine.GET("/update", h.Update)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Listen,
			Handler: engine,
		},
		engine: engine,
	}
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	slog.Info("HTTP server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server with a 5-second deadline.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}

// Engine returns the underlying Gin engine (useful for testing).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
