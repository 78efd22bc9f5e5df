// Package onboarding exposes the onboarding wizard feature to the
// composition root.
package onboarding

import (
	"log/slog"

	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/handler"
	"grcadmin/internal/onboarding/metrics"
	"grcadmin/internal/onboarding/scope"
	"grcadmin/internal/onboarding/service"
)

// Service orchestrates wizard progression, coverage and completion.
type Service = service.Service

// Handler wires the wizard HTTP endpoints to the service.
type Handler = handler.Handler

// Config toggles coverage enrichment per read path.
type Config = service.Config

// NewService constructs the onboarding service with its dependencies.
func NewService(logger *slog.Logger, store service.WizardStore, manifest *coverage.Manifest, deriver scope.Deriver, audit service.AuditEmitter, rec *metrics.Recorder, cfg Config) *Service {
	return service.New(logger, store, manifest, deriver, audit, rec, cfg)
}

// NewHandler constructs the HTTP handler for the wizard routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
