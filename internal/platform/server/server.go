// Package server builds the gallery's HTTP server
package server

import (
	"net"
	"net/http"
	"time"

	"photo-gallery/internal/config"
)

// New creates an http.Server listening on host:port with the configured
// timeouts. Unset timeouts fall back to conservative defaults.
func New(cfg *config.Config, handler http.Handler) *http.Server {
	read, write, idle := 15*time.Second, 30*time.Second, 60*time.Second
	if s := cfg.Server; s != nil {
		read = orDefault(s.ReadTimeout, read)
		write = orDefault(s.WriteTimeout, write)
		idle = orDefault(s.IdleTimeout, idle)
	}

	return &http.Server{
		Addr:              Address(cfg),
		Handler:           handler,
		ReadTimeout:       read,
		ReadHeaderTimeout: read,
		WriteTimeout:      write,
		IdleTimeout:       idle,
	}
}

// Address is the listen address. A "localhost" host in production binds
// all interfaces so the server is reachable inside a container.
func Address(cfg *config.Config) string {
	host := cfg.Host
	if host == "localhost" && cfg.Environment == "production" {
		host = ""
	}
	return net.JoinHostPort(host, cfg.Port)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
