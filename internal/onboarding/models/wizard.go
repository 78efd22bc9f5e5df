package models

import (
	"fmt"
	"time"

	"grcadmin/pkg/domain"
	dErrors "grcadmin/pkg/domain-errors"
)

// Status is the wizard lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Wizard is the per-tenant onboarding aggregate. One wizard exists per
// tenant; Version increments on every successful mutation and backs
// optimistic concurrency in the stores.
type Wizard struct {
	ID                domain.WizardID `json:"id"`
	TenantID          domain.TenantID `json:"tenant_id"`
	Status            Status          `json:"status"`
	CurrentStep       int             `json:"current_step"`
	ProgressPercent   int             `json:"progress_percent"`
	CompletedSections []SectionCode   `json:"completed_sections"`
	Sections          Sections        `json:"sections"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CompletedBy       string          `json:"completed_by,omitempty"`
	Version           int             `json:"version"`
}

// NewWizard starts a fresh wizard for a tenant at step one.
func NewWizard(tenantID domain.TenantID, now time.Time) *Wizard {
	return &Wizard{
		ID:          domain.NewWizardID(),
		TenantID:    tenantID,
		Status:      StatusInProgress,
		CurrentStep: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
}

// ApplySection stores a section payload and recomputes progression from the
// caller's self-reported completeness. Saving with complete=false keeps the
// answers but takes the section out of the completed set, so a tenant can
// park a half-filled section without it counting toward the gate. Resaving a
// complete section overwrites the payload without double-counting it.
func (w *Wizard) ApplySection(update SectionUpdate, complete bool, now time.Time) error {
	if w.Status == StatusCompleted {
		return dErrors.New(dErrors.CodeInvalidState, "onboarding already completed")
	}
	update.apply(&w.Sections)
	w.setSectionComplete(update.SectionCode(), complete)
	w.UpdatedAt = now
	return nil
}

func (w *Wizard) setSectionComplete(code SectionCode, complete bool) {
	switch {
	case complete && !w.SectionComplete(code):
		w.CompletedSections = append(w.CompletedSections, code)
		sortSections(w.CompletedSections)
	case !complete && w.SectionComplete(code):
		kept := w.CompletedSections[:0]
		for _, c := range w.CompletedSections {
			if c != code {
				kept = append(kept, c)
			}
		}
		w.CompletedSections = kept
	}
	w.ProgressPercent = 100 * len(w.CompletedSections) / TotalSteps
	if !complete {
		return
	}
	if ord := code.Ordinal(); ord >= w.CurrentStep && ord < TotalSteps {
		w.CurrentStep = ord + 1
	}
}

// SectionComplete reports whether the section is in the completed set.
func (w *Wizard) SectionComplete(code SectionCode) bool {
	for _, c := range w.CompletedSections {
		if c == code {
			return true
		}
	}
	return false
}

// MissingRequiredSections lists the completion-gating sections that are not
// yet complete, in step order.
func (w *Wizard) MissingRequiredSections() []SectionCode {
	var missing []SectionCode
	for _, code := range SectionOrder {
		if code.Required() && !w.SectionComplete(code) {
			missing = append(missing, code)
		}
	}
	return missing
}

// CanComplete reports whether every required section is complete.
func (w *Wizard) CanComplete() bool {
	return len(w.MissingRequiredSections()) == 0
}

// MissingSectionsError carries a completion gate failure as data, so
// transports can return the missing section codes in a structured field
// instead of prose.
type MissingSectionsError struct {
	Missing []SectionCode
}

func (e *MissingSectionsError) Error() string {
	return fmt.Sprintf("required sections incomplete: %v", e.Missing)
}

// ApplyCompletion transitions the wizard to completed. It fails when required
// sections are missing or the wizard is already completed.
func (w *Wizard) ApplyCompletion(completedBy string, now time.Time) error {
	if w.Status == StatusCompleted {
		return dErrors.New(dErrors.CodeInvalidState, "onboarding already completed")
	}
	if missing := w.MissingRequiredSections(); len(missing) > 0 {
		err := &MissingSectionsError{Missing: missing}
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "required sections incomplete")
	}
	w.Status = StatusCompleted
	w.CompletedAt = &now
	w.CompletedBy = completedBy
	w.UpdatedAt = now
	return nil
}

// NextSection returns the first incomplete section in step order, or "" when
// all twelve are complete.
func (w *Wizard) NextSection() SectionCode {
	for _, code := range SectionOrder {
		if !w.SectionComplete(code) {
			return code
		}
	}
	return ""
}

// Clone returns a deep-enough copy for handing out of a store. Section
// payloads are value types behind fresh pointers, so callers can mutate the
// copy freely.
func (w *Wizard) Clone() *Wizard {
	cp := *w
	cp.CompletedSections = append([]SectionCode(nil), w.CompletedSections...)
	cp.Sections = cloneSections(w.Sections)
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

func cloneSections(s Sections) Sections {
	out := s
	if s.OrgIdentity != nil {
		v := *s.OrgIdentity
		out.OrgIdentity = &v
	}
	if s.Assurance != nil {
		v := *s.Assurance
		out.Assurance = &v
	}
	if s.Regulatory != nil {
		v := *s.Regulatory
		out.Regulatory = &v
	}
	if s.Scope != nil {
		v := *s.Scope
		out.Scope = &v
	}
	if s.DataRisk != nil {
		v := *s.DataRisk
		out.DataRisk = &v
	}
	if s.Technology != nil {
		v := *s.Technology
		out.Technology = &v
	}
	if s.Ownership != nil {
		v := *s.Ownership
		out.Ownership = &v
	}
	if s.Teams != nil {
		v := *s.Teams
		out.Teams = &v
	}
	if s.Cadence != nil {
		v := *s.Cadence
		out.Cadence = &v
	}
	if s.Evidence != nil {
		v := *s.Evidence
		out.Evidence = &v
	}
	if s.Baseline != nil {
		v := *s.Baseline
		out.Baseline = &v
	}
	if s.SuccessMetrics != nil {
		v := *s.SuccessMetrics
		out.SuccessMetrics = &v
	}
	return out
}

func sortSections(codes []SectionCode) {
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j].Ordinal() < codes[j-1].Ordinal(); j-- {
			codes[j], codes[j-1] = codes[j-1], codes[j]
		}
	}
}
