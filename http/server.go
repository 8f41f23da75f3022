// Package http serves the scoring API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fraudscore/config"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer builds the API server with its middleware chain.
func NewServer(cfg config.HTTPConfig, deps Deps) *Server {
	return &Server{
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           NewHandler(cfg, deps),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Timeout,
			WriteTimeout:      cfg.Timeout,
			IdleTimeout:       120 * time.Second,
		},
		logger: deps.Logger,
	}
}

// NewHandler returns the routed API wrapped in middleware.
func NewHandler(cfg config.HTTPConfig, deps Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterHandlers(mux, deps)

	chain := Chain(
		RecoveryMiddleware(deps.Logger), // outermost, catches panics from everything below
		RequestIDMiddleware,
		LoggerMiddleware(deps.Logger),
		SecurityHeadersMiddleware,
		CORSMiddleware(cfg.AllowedOrigins),
		TimeoutMiddleware(cfg.Timeout),
		RequestSizeMiddleware(cfg.MaxBodyBytes),
	)
	return chain(mux)
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.String("feed", fmt.Sprintf("ws://localhost%s/api/ws/scores", s.server.Addr)),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
