// Package scope derives the initial compliance scope from completed
// onboarding answers.
package scope

import (
	"context"
	"time"

	"grcadmin/internal/onboarding/models"
	"grcadmin/pkg/domain"
	pstrings "grcadmin/pkg/platform/strings"
	"grcadmin/pkg/requestcontext"
)

// DerivedScope is the go-live scoping summary handed to downstream
// provisioning.
type DerivedScope struct {
	TenantID           domain.TenantID `json:"tenant_id"`
	LegalEntityCount   int             `json:"legal_entity_count"`
	BusinessUnitCount  int             `json:"business_unit_count"`
	SystemCount        int             `json:"system_count"`
	LocationCount      int             `json:"location_count"`
	Environments       []string        `json:"environments,omitempty"`
	Regulators         []string        `json:"regulators,omitempty"`
	Frameworks         []string        `json:"frameworks,omitempty"`
	BaselineCode       string          `json:"baseline_code,omitempty"`
	PaymentCardInScope bool            `json:"payment_card_in_scope"`
	PilotDomains       []string        `json:"pilot_domains,omitempty"`
	DerivedAt          time.Time       `json:"derived_at"`
}

// Deriver turns a wizard's answers into a DerivedScope.
type Deriver interface {
	Derive(ctx context.Context, w *models.Wizard) (*DerivedScope, error)
}

// AnswerDeriver derives scope directly from the wizard aggregate. It never
// reaches outside the answers, so it cannot fail on I/O.
type AnswerDeriver struct{}

// NewAnswerDeriver returns the in-process scope deriver.
func NewAnswerDeriver() AnswerDeriver {
	return AnswerDeriver{}
}

// Derive implements Deriver.
func (AnswerDeriver) Derive(ctx context.Context, w *models.Wizard) (*DerivedScope, error) {
	ds := &DerivedScope{
		TenantID:  w.TenantID,
		DerivedAt: requestcontext.Now(ctx),
	}

	if s := w.Sections.Scope; s != nil {
		ds.LegalEntityCount = len(s.InScopeLegalEntities)
		ds.BusinessUnitCount = len(s.InScopeBusinessUnits)
		ds.SystemCount = len(s.InScopeSystems)
		ds.LocationCount = len(s.InScopeLocations)
		ds.Environments = pstrings.DedupeAndTrim(s.InScopeEnvironments)
	}
	if s := w.Sections.Regulatory; s != nil {
		for _, r := range s.PrimaryRegulators {
			ds.Regulators = append(ds.Regulators, r.Code)
		}
		ds.Regulators = pstrings.DedupeAndTrim(ds.Regulators)
		ds.Frameworks = pstrings.DedupeAndTrim(s.MandatoryFrameworks)
	}
	if s := w.Sections.DataRisk; s != nil {
		ds.PaymentCardInScope = s.HasPaymentCardData
	}
	if s := w.Sections.Baseline; s != nil && s.AdoptDefaultBaseline {
		ds.BaselineCode = s.DefaultBaselineCode
		if ds.BaselineCode == "" {
			ds.BaselineCode = DefaultBaselineCode
		}
	}
	if s := w.Sections.SuccessMetrics; s != nil {
		ds.PilotDomains = pstrings.DedupeAndTrim(s.PilotDomains)
	}
	return ds, nil
}

// DefaultBaselineCode is applied when a tenant adopts the default baseline
// without naming one.
const DefaultBaselineCode = "BASELINE_CORE_V1"
