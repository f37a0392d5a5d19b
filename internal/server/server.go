package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	httpServer *http.Server
}

// Extracted constants to avoid magic numbers and centralize tuning knobs.
const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 0 // websocket streams outlive any fixed write deadline
	idleTimeout       = 60 * time.Second

	defaultHost = "0.0.0.0"
	defaultPort = "3000"
)

// newHTTPServer builds a configured *http.Server for the given address and handler.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// normalizeAddr turns a host and a port ("3000" or ":3000") into host:port,
// defaulting to every interface on port 3000.
func normalizeAddr(host, port string) string {
	port = strings.TrimPrefix(port, ":")
	if port == "" {
		port = defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	return net.JoinHostPort(host, port)
}

// Run starts the HTTP server on host:port using the provided handler. It
// returns nil once Shutdown has been called.
func (s *Server) Run(host, port string, handler http.Handler) error {
	s.httpServer = newHTTPServer(normalizeAddr(host, port), handler)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr reports the configured listen address, empty before Run.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
