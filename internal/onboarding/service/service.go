// Package service implements the onboarding wizard operations: progression,
// coverage evaluation, validation and completion.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/metrics"
	"grcadmin/internal/onboarding/models"
	"grcadmin/internal/onboarding/scope"
	"grcadmin/pkg/domain"
	dErrors "grcadmin/pkg/domain-errors"
	"grcadmin/pkg/platform/sentinel"
	"grcadmin/pkg/requestcontext"
)

// WizardStore is the persistence port for the wizard aggregate.
type WizardStore interface {
	Create(ctx context.Context, w *models.Wizard) error
	FindByTenant(ctx context.Context, tenantID domain.TenantID) (*models.Wizard, error)
	Execute(ctx context.Context, tenantID domain.TenantID, mutate func(*models.Wizard) error) (*models.Wizard, error)
}

// AuditEvent is one onboarding lifecycle event for the external audit trail.
type AuditEvent struct {
	TenantID domain.TenantID
	Action   string
	Actor    string
	At       time.Time
	Details  map[string]any
}

// AuditEmitter forwards lifecycle events to the audit trail. Emission is
// best-effort; a failing emitter never fails the operation that produced the
// event.
type AuditEmitter interface {
	Record(ctx context.Context, event AuditEvent)
}

// Config toggles coverage enrichment per read path.
type Config struct {
	CoverageOnProgress bool
	CoverageOnSave     bool
}

// Service orchestrates wizard progression and coverage.
type Service struct {
	logger   *slog.Logger
	store    WizardStore
	manifest *coverage.Manifest
	deriver  scope.Deriver
	audit    AuditEmitter
	metrics  *metrics.Recorder
	cfg      Config
}

// New wires the onboarding service.
func New(logger *slog.Logger, store WizardStore, manifest *coverage.Manifest, deriver scope.Deriver, audit AuditEmitter, rec *metrics.Recorder, cfg Config) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		manifest: manifest,
		deriver:  deriver,
		audit:    audit,
		metrics:  rec,
		cfg:      cfg,
	}
}

// Start creates the tenant's wizard, or returns the existing one. Starting is
// idempotent so a retried request never errors.
func (s *Service) Start(ctx context.Context, tenantID domain.TenantID) (*models.Wizard, error) {
	existing, err := s.store.FindByTenant(ctx, tenantID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, translateStoreErr(err)
	}

	w := models.NewWizard(tenantID, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, w); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a start race; the winner's wizard is the tenant's wizard.
			return s.GetState(ctx, tenantID)
		}
		return nil, translateStoreErr(err)
	}

	s.logger.InfoContext(ctx, "onboarding started",
		"tenant_id", tenantID.String(),
		"wizard_id", w.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, tenantID, "onboarding.started", nil)
	return w, nil
}

// GetState returns the tenant's wizard.
func (s *Service) GetState(ctx context.Context, tenantID domain.TenantID) (*models.Wizard, error) {
	w, err := s.store.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return w, nil
}

// SaveResult is the outcome of one section save.
type SaveResult struct {
	Section         models.SectionCode     `json:"section"`
	SectionComplete bool                   `json:"section_complete"`
	ProgressPercent int                    `json:"progress_percent"`
	CurrentStep     int                    `json:"current_step"`
	NextSection     models.SectionCode     `json:"next_section,omitempty"`
	Coverage        *coverage.NodeCoverage `json:"coverage,omitempty"`
}

// SaveSection stores one section payload and recomputes progression from the
// caller's self-reported completeness flag. Coverage for the saved section is
// evaluated when enabled, and its failure degrades to a response without
// coverage rather than an error.
func (s *Service) SaveSection(ctx context.Context, tenantID domain.TenantID, update models.SectionUpdate, isComplete bool) (*SaveResult, error) {
	code := update.SectionCode()
	now := requestcontext.Now(ctx)

	w, err := s.store.Execute(ctx, tenantID, func(w *models.Wizard) error {
		return w.ApplySection(update, isComplete, now)
	})
	if err != nil {
		s.metrics.SectionSaves.WithLabelValues(string(code), "error").Inc()
		return nil, translateStoreErr(err)
	}
	s.metrics.SectionSaves.WithLabelValues(string(code), "success").Inc()

	result := &SaveResult{
		Section:         code,
		SectionComplete: isComplete,
		ProgressPercent: w.ProgressPercent,
		CurrentStep:     w.CurrentStep,
		NextSection:     w.NextSection(),
	}
	if s.cfg.CoverageOnSave {
		result.Coverage = s.nodeCoverage(ctx, w, code)
	}

	s.logger.InfoContext(ctx, "section saved",
		"tenant_id", tenantID.String(),
		"section", string(code),
		"progress_percent", w.ProgressPercent,
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

// SaveMinimal applies the fast-path payload, starting the wizard first if
// needed. All six gating sections are saved complete in one mutation; the
// fast path exists to reach the completion gate, so there is no per-section
// flag here.
func (s *Service) SaveMinimal(ctx context.Context, tenantID domain.TenantID, minimal models.MinimalOnboarding) (*models.Wizard, error) {
	if _, err := s.Start(ctx, tenantID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	w, err := s.store.Execute(ctx, tenantID, func(w *models.Wizard) error {
		for _, update := range minimal.SectionUpdates() {
			if err := w.ApplySection(update, true, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}

	s.logger.InfoContext(ctx, "minimal onboarding saved",
		"tenant_id", tenantID.String(),
		"progress_percent", w.ProgressPercent,
		"request_id", requestcontext.RequestID(ctx),
	)
	return w, nil
}

// ValidationResult reports completion readiness.
type ValidationResult struct {
	CanComplete       bool                        `json:"can_complete"`
	MissingSections   []models.SectionCode        `json:"missing_sections,omitempty"`
	CompletedSections int                         `json:"completed_sections"`
	SectionStatus     map[models.SectionCode]bool `json:"section_status"`
	Warnings          []string                    `json:"warnings,omitempty"`
}

// Validate checks whether the wizard can be completed. With minimalOnly set,
// only the six gating sections are checked; otherwise incomplete optional
// sections and coverage gaps are reported as warnings.
func (s *Service) Validate(ctx context.Context, tenantID domain.TenantID, minimalOnly bool) (*ValidationResult, error) {
	w, err := s.GetState(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		MissingSections:   w.MissingRequiredSections(),
		CompletedSections: len(w.CompletedSections),
		SectionStatus:     make(map[models.SectionCode]bool, models.TotalSteps),
	}
	for _, code := range models.SectionOrder {
		result.SectionStatus[code] = w.SectionComplete(code)
	}
	result.CanComplete = len(result.MissingSections) == 0
	if minimalOnly {
		return result, nil
	}

	for _, code := range models.SectionOrder {
		if !code.Required() && !w.SectionComplete(code) {
			result.Warnings = append(result.Warnings, "optional section incomplete: "+string(code)+" ("+code.Name()+")")
		}
	}
	if report := s.fullCoverage(ctx, w); report != nil && !report.Complete {
		for _, mission := range report.Missions {
			for _, node := range mission.Nodes {
				for _, key := range node.Missing {
					result.Warnings = append(result.Warnings, "missing field: "+string(key))
				}
			}
		}
	}
	return result, nil
}

// CompletionResult is the outcome of completing onboarding.
type CompletionResult struct {
	Wizard *models.Wizard      `json:"wizard"`
	Scope  *scope.DerivedScope `json:"scope,omitempty"`
}

// Complete transitions the wizard to completed. The gate is the minimal
// check: every required section saved. Coverage is advisory and never blocks
// completion; scope derivation and audit emission are best-effort.
func (s *Service) Complete(ctx context.Context, tenantID domain.TenantID) (*CompletionResult, error) {
	now := requestcontext.Now(ctx)
	actor := requestcontext.UserID(ctx)

	w, err := s.store.Execute(ctx, tenantID, func(w *models.Wizard) error {
		return w.ApplyCompletion(actor, now)
	})
	if err != nil {
		s.metrics.Completions.WithLabelValues("error").Inc()
		return nil, translateStoreErr(err)
	}
	s.metrics.Completions.WithLabelValues("success").Inc()

	result := &CompletionResult{Wizard: w}
	derived, err := s.deriver.Derive(ctx, w)
	if err != nil {
		s.logger.WarnContext(ctx, "scope derivation failed after completion",
			"tenant_id", tenantID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		result.Scope = derived
	}

	s.logger.InfoContext(ctx, "onboarding completed",
		"tenant_id", tenantID.String(),
		"completed_by", actor,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, tenantID, "onboarding.completed", map[string]any{
		"progress_percent": w.ProgressPercent,
	})
	return result, nil
}

// SectionCoverage evaluates coverage for one section.
func (s *Service) SectionCoverage(ctx context.Context, tenantID domain.TenantID, code models.SectionCode) (*coverage.NodeCoverage, error) {
	w, err := s.GetState(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	nc, err := s.manifest.EvaluateNode(NodeForSection(code), NewFieldProvider(w.Sections))
	if err != nil {
		s.metrics.CoverageEvaluations.WithLabelValues("node", "error").Inc()
		return nil, err
	}
	s.metrics.CoverageEvaluations.WithLabelValues("node", "success").Inc()
	return &nc, nil
}

// AllCoverage evaluates the full coverage report for the tenant.
func (s *Service) AllCoverage(ctx context.Context, tenantID domain.TenantID) (*coverage.Report, error) {
	w, err := s.GetState(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	report := s.manifest.EvaluateAll(NewFieldProvider(w.Sections))
	s.metrics.EvaluationSeconds.Observe(time.Since(start).Seconds())
	s.metrics.CoverageEvaluations.WithLabelValues("all", "success").Inc()
	return &report, nil
}

// Scope derives the scoping summary from the current answers, complete or
// not.
func (s *Service) Scope(ctx context.Context, tenantID domain.TenantID) (*scope.DerivedScope, error) {
	w, err := s.GetState(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.deriver.Derive(ctx, w)
}

// nodeCoverage evaluates one section's node, degrading to nil on any failure.
func (s *Service) nodeCoverage(ctx context.Context, w *models.Wizard, code models.SectionCode) *coverage.NodeCoverage {
	nc, err := s.manifest.EvaluateNode(NodeForSection(code), NewFieldProvider(w.Sections))
	if err != nil {
		s.metrics.CoverageEvaluations.WithLabelValues("node", "error").Inc()
		s.logger.WarnContext(ctx, "coverage evaluation failed",
			"tenant_id", w.TenantID.String(),
			"section", string(code),
			"error", err,
		)
		return nil
	}
	s.metrics.CoverageEvaluations.WithLabelValues("node", "success").Inc()
	return &nc
}

// fullCoverage evaluates the whole report, degrading to nil on any failure.
func (s *Service) fullCoverage(ctx context.Context, w *models.Wizard) *coverage.Report {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.CoverageEvaluations.WithLabelValues("all", "error").Inc()
			s.logger.ErrorContext(ctx, "coverage evaluation panicked",
				"tenant_id", w.TenantID.String(),
				"panic", r,
			)
		}
	}()
	start := time.Now()
	report := s.manifest.EvaluateAll(NewFieldProvider(w.Sections))
	s.metrics.EvaluationSeconds.Observe(time.Since(start).Seconds())
	s.metrics.CoverageEvaluations.WithLabelValues("all", "success").Inc()
	return &report
}

func (s *Service) emitAudit(ctx context.Context, tenantID domain.TenantID, action string, details map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEvent{
		TenantID: tenantID,
		Action:   action,
		Actor:    requestcontext.UserID(ctx),
		At:       requestcontext.Now(ctx),
		Details:  details,
	})
}

func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "onboarding not started for tenant")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "onboarding already exists for tenant")
	case errors.Is(err, sentinel.ErrVersionMismatch):
		return dErrors.Wrap(err, dErrors.CodeConflict, "onboarding was modified concurrently")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "onboarding store failure")
	}
}
