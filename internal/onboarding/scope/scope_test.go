package scope

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grcadmin/internal/onboarding/models"
	"grcadmin/pkg/domain"
	"grcadmin/pkg/requestcontext"
)

func TestDeriveFromAnswers(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	tenantID, err := domain.ParseTenantID("7b0d8a68-5f3c-4f0e-9a51-2d8a4f4f9c1e")
	require.NoError(t, err)

	w := &models.Wizard{
		TenantID: tenantID,
		Sections: models.Sections{
			Scope: &models.SectionScope{
				InScopeLegalEntities: []models.LegalEntityScope{{Name: "Acme KSA"}},
				InScopeBusinessUnits: []models.BusinessUnitScope{{Code: "RETAIL"}, {Code: "CORP"}},
				InScopeSystems:       []models.SystemScope{{Code: "CORE"}},
				InScopeLocations:     []models.LocationScope{{Name: "aws-me-south-1"}},
				InScopeEnvironments:  []string{" Production ", "DR", "Production"},
			},
			Regulatory: &models.SectionRegulatory{
				PrimaryRegulators:   []models.Regulator{{Code: "SAMA"}, {Code: " SAMA "}, {Code: "NCA"}},
				MandatoryFrameworks: []string{"SAMA-CSF", "SAMA-CSF", "ISO27001"},
			},
			DataRisk: &models.SectionDataRisk{HasPaymentCardData: true},
			Baseline: &models.SectionBaseline{AdoptDefaultBaseline: true},
			SuccessMetrics: &models.SectionSuccessMetrics{
				PilotDomains: []string{"access-management", "", "access-management"},
			},
		},
	}

	ds, err := NewAnswerDeriver().Derive(ctx, w)
	require.NoError(t, err)

	assert.Equal(t, tenantID, ds.TenantID)
	assert.Equal(t, 1, ds.LegalEntityCount)
	assert.Equal(t, 2, ds.BusinessUnitCount)
	assert.Equal(t, 1, ds.SystemCount)
	assert.Equal(t, 1, ds.LocationCount)
	assert.Equal(t, []string{"Production", "DR"}, ds.Environments)
	assert.Equal(t, []string{"SAMA", "NCA"}, ds.Regulators)
	assert.Equal(t, []string{"SAMA-CSF", "ISO27001"}, ds.Frameworks)
	assert.Equal(t, DefaultBaselineCode, ds.BaselineCode)
	assert.True(t, ds.PaymentCardInScope)
	assert.Equal(t, []string{"access-management"}, ds.PilotDomains)
	assert.Equal(t, now, ds.DerivedAt)
}

func TestDeriveEmptyWizard(t *testing.T) {
	tenantID, err := domain.ParseTenantID("7b0d8a68-5f3c-4f0e-9a51-2d8a4f4f9c1e")
	require.NoError(t, err)

	ds, err := NewAnswerDeriver().Derive(context.Background(), &models.Wizard{TenantID: tenantID})
	require.NoError(t, err)

	assert.Zero(t, ds.SystemCount)
	assert.Empty(t, ds.Environments)
	assert.Empty(t, ds.BaselineCode)
	assert.False(t, ds.PaymentCardInScope)
}
