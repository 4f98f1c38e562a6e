package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	httpServer *http.Server
}

// Config holds the listener timeouts. Zero values take the defaults.
type Config struct {
	Port              string
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	// UpstreamTimeout is the longest outbound call a handler may wait on.
	// WriteTimeout is raised to exceed it by writeHeadroom.
	UpstreamTimeout time.Duration
}

const (
	defaultPort       = "8080"
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	// A vendor call may take up to the client timeout, so leave headroom.
	writeTimeout  = 20 * time.Second
	writeHeadroom = 5 * time.Second
	idleTimeout   = 60 * time.Second
)

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// effectiveWriteTimeout keeps the write deadline past the upstream timeout so
// a timed-out vendor call still produces a response.
func effectiveWriteTimeout(cfg Config) time.Duration {
	wt := orDefault(cfg.WriteTimeout, writeTimeout)
	if cfg.UpstreamTimeout > 0 && wt < cfg.UpstreamTimeout+writeHeadroom {
		wt = cfg.UpstreamTimeout + writeHeadroom
	}
	return wt
}

// newHTTPServer builds a configured *http.Server for cfg and handler.
func newHTTPServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              normalizeAddr(cfg.Port),
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: orDefault(cfg.ReadHeaderTimeout, readHeaderTimeout),
		WriteTimeout:      effectiveWriteTimeout(cfg),
		IdleTimeout:       orDefault(cfg.IdleTimeout, idleTimeout),
	}
}

// normalizeAddr accepts "8080" or ":8080"; empty means the default port.
func normalizeAddr(port string) string {
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run(cfg Config, handler http.Handler) error {
	s.httpServer = newHTTPServer(cfg, handler)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
