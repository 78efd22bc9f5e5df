package service

import (
	"context"
	"time"

	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/models"
	"grcadmin/pkg/domain"
	dErrors "grcadmin/pkg/domain-errors"
)

// SectionProgress is the per-section slice of a progress summary.
type SectionProgress struct {
	Code     models.SectionCode     `json:"code"`
	Name     string                 `json:"name"`
	Complete bool                   `json:"complete"`
	Required bool                   `json:"required"`
	Coverage *coverage.NodeCoverage `json:"coverage,omitempty"`
}

// CoverageEnrichment is the advisory coverage layer of a progress summary.
// It is absent when coverage is disabled or its evaluation failed.
type CoverageEnrichment struct {
	ManifestVersion string                     `json:"manifest_version"`
	OverallPercent  int                        `json:"overall_percent"`
	Complete        bool                       `json:"complete"`
	Missions        []coverage.MissionCoverage `json:"missions"`
}

// ProgressSummary is the wizard dashboard view.
type ProgressSummary struct {
	TenantID        domain.TenantID      `json:"tenant_id"`
	Status          models.Status        `json:"status"`
	CurrentStep     int                  `json:"current_step"`
	TotalSteps      int                  `json:"total_steps"`
	ProgressPercent int                  `json:"progress_percent"`
	Sections        []SectionProgress    `json:"sections"`
	PendingSections []models.SectionCode `json:"pending_required_sections,omitempty"`
	CanComplete     bool                 `json:"can_complete"`
	LastUpdated     *time.Time           `json:"last_updated,omitempty"`
	Coverage        *CoverageEnrichment  `json:"coverage,omitempty"`
}

// Progress builds the dashboard summary. A tenant that never started gets a
// synthesized not-started summary instead of an error. Completion readiness
// follows the section gate; when coverage enrichment is on and succeeded, it
// additionally requires complete coverage on the gating sections.
func (s *Service) Progress(ctx context.Context, tenantID domain.TenantID) (*ProgressSummary, error) {
	w, err := s.GetState(ctx, tenantID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return notStartedSummary(tenantID), nil
		}
		return nil, err
	}

	summary := &ProgressSummary{
		TenantID:        tenantID,
		Status:          w.Status,
		CurrentStep:     w.CurrentStep,
		TotalSteps:      models.TotalSteps,
		ProgressPercent: w.ProgressPercent,
		PendingSections: w.MissingRequiredSections(),
		CanComplete:     w.CanComplete(),
	}
	updated := w.UpdatedAt
	summary.LastUpdated = &updated

	var report *coverage.Report
	if s.cfg.CoverageOnProgress {
		report = s.fullCoverage(ctx, w)
	}

	nodeResults := make(map[coverage.NodeID]*coverage.NodeCoverage)
	if report != nil {
		summary.Coverage = &CoverageEnrichment{
			ManifestVersion: report.ManifestVersion,
			OverallPercent:  report.Percent,
			Complete:        report.Complete,
			Missions:        report.Missions,
		}
		for mi := range report.Missions {
			for ni := range report.Missions[mi].Nodes {
				nc := &report.Missions[mi].Nodes[ni]
				nodeResults[nc.NodeID] = nc
			}
		}
	}

	gatingCoverageComplete := true
	for _, code := range models.SectionOrder {
		sp := SectionProgress{
			Code:     code,
			Name:     code.Name(),
			Complete: w.SectionComplete(code),
			Required: code.Required(),
		}
		if nc := nodeResults[NodeForSection(code)]; nc != nil {
			sp.Coverage = nc
			if code.Required() && !nc.Complete {
				gatingCoverageComplete = false
			}
		}
		summary.Sections = append(summary.Sections, sp)
	}
	if report != nil {
		summary.CanComplete = summary.CanComplete && gatingCoverageComplete
	}
	return summary, nil
}

func notStartedSummary(tenantID domain.TenantID) *ProgressSummary {
	summary := &ProgressSummary{
		TenantID:    tenantID,
		Status:      models.StatusNotStarted,
		CurrentStep: 1,
		TotalSteps:  models.TotalSteps,
	}
	for _, code := range models.SectionOrder {
		summary.Sections = append(summary.Sections, SectionProgress{
			Code:     code,
			Name:     code.Name(),
			Required: code.Required(),
		})
		if code.Required() {
			summary.PendingSections = append(summary.PendingSections, code)
		}
	}
	return summary
}
