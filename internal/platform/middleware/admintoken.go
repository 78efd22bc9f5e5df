package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"grcadmin/pkg/requestcontext"
)

// RequireAdminToken guards admin routes with a shared-secret header check.
// Authentication proper is out of scope for this gateway; the token gate keeps
// onboarding endpoints off the open internet until the identity integration
// lands.
func RequireAdminToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token missing or invalid",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
