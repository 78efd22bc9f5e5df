// Package httpserver builds the gateway's HTTP listeners.
package httpserver

import (
	"net/http"
	"time"
)

// New builds a server tuned for the wizard API: small JSON payloads over
// short-lived requests, so slow-client timeouts stay tight. The metrics
// listener shares the same profile.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
