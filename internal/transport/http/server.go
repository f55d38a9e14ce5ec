package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshdurbin/shortlink/internal/config"
	"github.com/joshdurbin/shortlink/internal/service"
)

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	logger  *httplog.Logger
}

// NewServer creates a new HTTP server. gatherer backs the /metrics endpoint.
func NewServer(shortener service.URLShortener, cfg config.ServerConfig, logger *httplog.Logger, gatherer prometheus.Gatherer) *Server {
	handler := NewHandler(shortener, cfg.ServerURL)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewRouter(handler, logger, gatherer, cfg.CORSOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		handler: handler,
		server:  server,
		logger:  logger,
	}
}

// Start listens on the configured port and serves until Shutdown
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve serves on an existing listener until Shutdown. A clean shutdown
// returns nil.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("server starting", "addr", l.Addr().String())

	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}
