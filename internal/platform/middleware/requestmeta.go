// Package middleware provides the HTTP middleware chain for the admin gateway.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"grcadmin/pkg/requestcontext"
)

// RequestMeta stamps every request with a request ID, a request-scoped "now",
// and the caller identity from the X-User-ID header. All operations within a
// single request observe the same timestamp.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())

		if userID := r.Header.Get("X-User-ID"); userID != "" {
			ctx = requestcontext.WithUserID(ctx, userID)
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
