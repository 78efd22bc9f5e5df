package httpserver

import (
	"net/http"
	"testing"
)

func TestNewSetsTimeouts(t *testing.T) {
	srv := New(":8080", http.NewServeMux())

	if srv.Addr != ":8080" {
		t.Fatalf("Addr = %q", srv.Addr)
	}
	if srv.Handler == nil {
		t.Fatal("Handler not set")
	}
	for name, d := range map[string]int64{
		"ReadHeaderTimeout": int64(srv.ReadHeaderTimeout),
		"ReadTimeout":       int64(srv.ReadTimeout),
		"WriteTimeout":      int64(srv.WriteTimeout),
		"IdleTimeout":       int64(srv.IdleTimeout),
	} {
		if d <= 0 {
			t.Errorf("%s not set", name)
		}
	}
}
