// Package audit forwards onboarding lifecycle events to the audit trail.
package audit

import (
	"context"
	"log/slog"

	"grcadmin/internal/onboarding/service"
	"grcadmin/pkg/requestcontext"
)

// LogEmitter writes audit events to the structured log. It stands in for the
// platform audit pipeline, which consumes these records downstream; the
// service treats emission as fire-and-forget either way.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter wraps the process logger.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Record implements service.AuditEmitter.
func (e *LogEmitter) Record(ctx context.Context, event service.AuditEvent) {
	attrs := []any{
		"audit_action", event.Action,
		"tenant_id", event.TenantID.String(),
		"actor", event.Actor,
		"at", event.At,
		"request_id", requestcontext.RequestID(ctx),
	}
	for k, v := range event.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	e.logger.InfoContext(ctx, "audit event", attrs...)
}
