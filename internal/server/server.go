// Package server dispatches HTTP requests to the resolver, the include
// engine and the render cache.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"ssiserve/internal/config"
	"ssiserve/internal/include"
	"ssiserve/internal/resolver"
	"ssiserve/internal/slogutil"
)

// Server serves one document root over HTTP.
type Server struct {
	server   *http.Server
	addr     string
	tempDir  string
	logger   *slog.Logger
	resolver *resolver.Resolver
	engine   *include.Engine
}

// NewServer creates a new HTTP server instance
func NewServer(cfg config.ServerConfig, tempDir string, res *resolver.Resolver, engine *include.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	s := &Server{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		tempDir:  tempDir,
		logger:   logger,
		resolver: res,
		engine:   engine,
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.applyMiddleware(http.HandlerFunc(s.handle), cfg.Compress),
		ReadTimeout:  seconds(cfg.ReadTimeoutSeconds),
		WriteTimeout: seconds(cfg.WriteTimeoutSeconds),
		IdleTimeout:  seconds(cfg.IdleTimeoutSeconds),
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server",
		"addr", ln.Addr().String(),
		"root", s.resolver.Root(),
	)

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler, compress bool) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	if compress {
		handler = gzhttp.GzipHandler(handler)
	}
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = ServerHeaderMiddleware()(handler)
	return handler
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
