// Package server wires the dispatch gateway and its sidecar endpoints
// into an HTTP server with the standard middleware chain.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/config"
	"github.com/bobmcallan/hubgate/internal/gateway"
	"github.com/bobmcallan/hubgate/internal/handlers"
)

// Server manages the HTTP server and routes.
type Server struct {
	gateway *gateway.Gateway
	router  *http.ServeMux
	server  *http.Server
	logger  *common.Logger
}

// New creates the HTTP server around a configured gateway.
func New(cfg *config.Config, logger *common.Logger, gw *gateway.Gateway) *Server {
	s := &Server{
		gateway: gw,
		logger:  logger,
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // paginated search tools can take a while
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Str("url", fmt.Sprintf("http://%s", s.server.Addr)).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Tool dispatch endpoint
	mux.Handle("/tools/call", s.gateway)

	// Tool catalog
	mux.Handle("/tools", handlers.NewCatalogHandler(s.gateway.Registry(), s.logger))

	// API routes
	mux.Handle("/api/health", handlers.NewHealthHandler(s.logger))
	mux.Handle("/api/version", handlers.NewVersionHandler(s.logger))

	// 404 handler for unmatched routes
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
