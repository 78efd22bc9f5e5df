package handler

import (
	"time"

	"grcadmin/internal/onboarding/models"
	"grcadmin/internal/onboarding/scope"
	"grcadmin/internal/onboarding/service"
	"grcadmin/pkg/domain"
)

// wizardResponse is the wire shape of the wizard aggregate.
type wizardResponse struct {
	ID                domain.WizardID      `json:"id"`
	TenantID          domain.TenantID      `json:"tenant_id"`
	Status            models.Status        `json:"status"`
	CurrentStep       int                  `json:"current_step"`
	TotalSteps        int                  `json:"total_steps"`
	ProgressPercent   int                  `json:"progress_percent"`
	CompletedSections []models.SectionCode `json:"completed_sections"`
	NextSection       models.SectionCode   `json:"next_section,omitempty"`
	Sections          models.Sections      `json:"sections"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty"`
	CompletedBy       string               `json:"completed_by,omitempty"`
	Version           int                  `json:"version"`
}

func fromWizard(w *models.Wizard) wizardResponse {
	return wizardResponse{
		ID:                w.ID,
		TenantID:          w.TenantID,
		Status:            w.Status,
		CurrentStep:       w.CurrentStep,
		TotalSteps:        models.TotalSteps,
		ProgressPercent:   w.ProgressPercent,
		CompletedSections: w.CompletedSections,
		NextSection:       w.NextSection(),
		Sections:          w.Sections,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
		CompletedAt:       w.CompletedAt,
		CompletedBy:       w.CompletedBy,
		Version:           w.Version,
	}
}

// completionResponse is the wire shape of a successful completion.
type completionResponse struct {
	Wizard wizardResponse      `json:"wizard"`
	Scope  *scope.DerivedScope `json:"scope,omitempty"`
}

// completionBlockedResponse is the wire shape of a completion gate failure.
// The missing codes travel as data, not just prose.
type completionBlockedResponse struct {
	Error            string               `json:"error"`
	ErrorDescription string               `json:"error_description"`
	MissingSections  []models.SectionCode `json:"missing_sections"`
}

func fromCompletion(result *service.CompletionResult) completionResponse {
	return completionResponse{
		Wizard: fromWizard(result.Wizard),
		Scope:  result.Scope,
	}
}
