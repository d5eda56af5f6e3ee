package api

import (
	"context"
	"net/http"
	"time"
)

const shutdownGrace = 15 * time.Second

// Server wraps http.Server with a drain-aware shutdown.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a server with sane timeouts for a public API.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, waiting at most the grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
