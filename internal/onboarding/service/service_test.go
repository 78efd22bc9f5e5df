package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/metrics"
	"grcadmin/internal/onboarding/models"
	"grcadmin/internal/onboarding/scope"
	wizardstore "grcadmin/internal/onboarding/store/wizard"
	"grcadmin/pkg/domain"
	dErrors "grcadmin/pkg/domain-errors"
	"grcadmin/pkg/requestcontext"
)

// Prometheus collectors register globally, so the package shares one recorder.
var testMetrics = metrics.New()

type fakeAudit struct {
	events []AuditEvent
}

func (f *fakeAudit) Record(_ context.Context, event AuditEvent) {
	f.events = append(f.events, event)
}

func (f *fakeAudit) actions() []string {
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Action
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	svc      *Service
	store    *wizardstore.InMemory
	audit    *fakeAudit
	manifest *coverage.Manifest
	ctx      context.Context
	tenantID domain.TenantID
}

func (s *ServiceSuite) SetupTest() {
	manifest, err := coverage.Load()
	s.Require().NoError(err)

	s.manifest = manifest
	s.store = wizardstore.NewInMemory()
	s.audit = &fakeAudit{}
	s.svc = New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		s.store,
		manifest,
		scope.NewAnswerDeriver(),
		s.audit,
		testMetrics,
		Config{CoverageOnProgress: true, CoverageOnSave: true},
	)

	s.tenantID = domain.TenantID(uuid.New())
	ctx := requestcontext.WithUserID(context.Background(), "admin@acme.example")
	s.ctx = requestcontext.WithTime(ctx, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// fullMinimal fills every statically required field of the six gating
// sections.
func fullMinimal() models.MinimalOnboarding {
	return models.MinimalOnboarding{
		OrgIdentity: models.SectionOrgIdentity{
			LegalNameEn:            "Acme Financial",
			CountryOfIncorporation: "SA",
			PrimaryHQLocation:      "Riyadh",
			Timezone:               "Asia/Riyadh",
			PrimaryLanguage:        "English",
			CorporateEmailDomains:  []string{"acme.example"},
			OrganizationType:       "PrivateCompany",
			IndustrySectors:        []string{"Banking"},
		},
		Scope: models.SectionScope{
			InScopeLegalEntities: []models.LegalEntityScope{{Name: "Acme Financial KSA", Primary: true}},
			InScopeBusinessUnits: []models.BusinessUnitScope{{Code: "RETAIL", Name: "Retail Banking"}},
			InScopeSystems:       []models.SystemScope{{Code: "CORE", Name: "Core Banking", CriticalityTier: 1}},
			InScopeProcesses:     []string{"payments"},
			InScopeEnvironments:  []string{"Production"},
			InScopeLocations:     []models.LocationScope{{Type: "cloud", Name: "aws-me-south-1", CloudProvider: "AWS"}},
		},
		DataRisk: models.SectionDataRisk{
			DataTypesProcessed: []string{"pii", "financial"},
		},
		Technology: models.SectionTechnology{
			IdentityProvider: "AzureAD",
			ITSMPlatform:     "Jira",
			CloudProviders:   []string{"AWS"},
		},
		Teams: models.SectionTeams{
			OrgAdmins:            []models.OrgAdmin{{Name: "Admin", Email: "admin@acme.example", Primary: true}},
			NotificationChannels: []string{"email"},
			EscalationTarget:     "ciso@acme.example",
		},
		Cadence: models.SectionCadence{
			EvidenceSubmitSLADays: 5,
			RemediationSLADays:    map[string]int{"critical": 7, "high": 30},
		},
	}
}

func (s *ServiceSuite) TestStartIsIdempotent() {
	first, err := s.svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)

	second, err := s.svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal([]string{"onboarding.started"}, s.audit.actions())
}

func (s *ServiceSuite) TestGetStateNotStarted() {
	_, err := s.svc.GetState(s.ctx, s.tenantID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSaveSectionRequiresStart() {
	_, err := s.svc.SaveSection(s.ctx, s.tenantID, models.SectionOrgIdentity{LegalNameEn: "Acme"}, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestFullJourney walks the complete twelve-section path to completion.
func (s *ServiceSuite) TestFullJourney() {
	_, err := s.svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)

	minimal := fullMinimal()
	updates := []models.SectionUpdate{
		minimal.OrgIdentity,
		models.SectionAssurance{PrimaryDriver: "regulatory"},
		models.SectionRegulatory{PrimaryRegulators: []models.Regulator{{Jurisdiction: "SA", Code: "SAMA"}}},
		minimal.Scope,
		minimal.DataRisk,
		minimal.Technology,
		models.SectionOwnership{OwnershipApproach: "centralized"},
		minimal.Teams,
		minimal.Cadence,
		models.SectionEvidence{RetentionPeriodYears: 7},
		models.SectionBaseline{AdoptDefaultBaseline: true},
		models.SectionSuccessMetrics{SuccessMetrics: []string{"audit prep time"}},
	}
	for i, update := range updates {
		result, err := s.svc.SaveSection(s.ctx, s.tenantID, update, true)
		s.Require().NoError(err)
		s.Equal(100*(i+1)/12, result.ProgressPercent)
		s.Require().NotNil(result.Coverage, "coverage enrichment for section %s", update.SectionCode())
	}

	progress, err := s.svc.Progress(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(100, progress.ProgressPercent)
	s.True(progress.CanComplete)
	s.Require().NotNil(progress.Coverage)
	s.True(progress.Coverage.Complete)
	s.Equal(100, progress.Coverage.OverallPercent)

	result, err := s.svc.Complete(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, result.Wizard.Status)
	s.Equal("admin@acme.example", result.Wizard.CompletedBy)
	s.Require().NotNil(result.Scope)
	s.Equal(1, result.Scope.SystemCount)
	s.Equal([]string{"SAMA"}, result.Scope.Regulators)
	s.Equal(scope.DefaultBaselineCode, result.Scope.BaselineCode)

	s.Contains(s.audit.actions(), "onboarding.completed")

	_, err = s.svc.SaveSection(s.ctx, s.tenantID, models.SectionBaseline{}, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

// TestMinimalFastPath reaches completion through the six-section payload.
func (s *ServiceSuite) TestMinimalFastPath() {
	w, err := s.svc.SaveMinimal(s.ctx, s.tenantID, fullMinimal())
	s.Require().NoError(err)
	s.Equal(50, w.ProgressPercent)
	s.Len(w.CompletedSections, 6)

	validation, err := s.svc.Validate(s.ctx, s.tenantID, true)
	s.Require().NoError(err)
	s.True(validation.CanComplete)
	s.Empty(validation.MissingSections)

	progress, err := s.svc.Progress(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.True(progress.CanComplete)

	result, err := s.svc.Complete(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, result.Wizard.Status)
}

// TestConditionalRuleJourney drives the payment-card rule through its
// trigger-then-satisfy cycle.
func (s *ServiceSuite) TestConditionalRuleJourney() {
	_, err := s.svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)

	result, err := s.svc.SaveSection(s.ctx, s.tenantID, models.SectionDataRisk{
		DataTypesProcessed: []string{"cardholder"},
		HasPaymentCardData: true,
	}, true)
	s.Require().NoError(err)
	s.Require().NotNil(result.Coverage)
	s.Contains(result.Coverage.Missing, coverage.FieldKey("W.E.2b.payment_card_details"))
	s.False(result.Coverage.Complete)

	result, err = s.svc.SaveSection(s.ctx, s.tenantID, models.SectionDataRisk{
		DataTypesProcessed: []string{"cardholder"},
		HasPaymentCardData: true,
		PaymentCardDetails: &models.PaymentCardDetails{MerchantLevel: "L1"},
	}, true)
	s.Require().NoError(err)
	s.Require().NotNil(result.Coverage)
	s.True(result.Coverage.Complete)
}

// TestCoverageDegradesOnSave swaps in a manifest that cannot evaluate the
// saved section; the save still succeeds, just without enrichment.
func (s *ServiceSuite) TestCoverageDegradesOnSave() {
	partial, err := coverage.Parse([]byte(`
version: "partial"
nodes:
  M1.C: {required: [W.C.1.primary_regulators]}
missions:
  MISSION_1_SCOPE_RISK: {nodes: [M1.C]}
`))
	s.Require().NoError(err)

	svc := New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		s.store,
		partial,
		scope.NewAnswerDeriver(),
		s.audit,
		testMetrics,
		Config{CoverageOnProgress: true, CoverageOnSave: true},
	)

	_, err = svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)

	result, err := svc.SaveSection(s.ctx, s.tenantID, models.SectionOrgIdentity{LegalNameEn: "Acme"}, true)
	s.Require().NoError(err)
	s.True(result.SectionComplete)
	s.Nil(result.Coverage)
}

func (s *ServiceSuite) TestCoverageDisabled() {
	svc := New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		s.store,
		s.manifest,
		scope.NewAnswerDeriver(),
		s.audit,
		testMetrics,
		Config{},
	)

	_, err := svc.SaveMinimal(s.ctx, s.tenantID, fullMinimal())
	s.Require().NoError(err)

	result, err := svc.SaveSection(s.ctx, s.tenantID, models.SectionBaseline{AdoptDefaultBaseline: true}, true)
	s.Require().NoError(err)
	s.Nil(result.Coverage)

	progress, err := svc.Progress(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Nil(progress.Coverage)
	// Without enrichment, readiness is the section gate alone.
	s.True(progress.CanComplete)
}

func (s *ServiceSuite) TestProgressNotStarted() {
	progress, err := s.svc.Progress(s.ctx, s.tenantID)
	s.Require().NoError(err)

	s.Equal(models.StatusNotStarted, progress.Status)
	s.Equal(1, progress.CurrentStep)
	s.Equal(12, progress.TotalSteps)
	s.Equal(0, progress.ProgressPercent)
	s.False(progress.CanComplete)
	s.Len(progress.Sections, 12)
	s.Len(progress.PendingSections, 6)
	s.Nil(progress.LastUpdated)
}

func (s *ServiceSuite) TestProgressCoverageGatesReadiness() {
	_, err := s.svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)

	// Save the six gating sections with empty payloads: the section gate
	// passes but gating coverage does not.
	for _, update := range []models.SectionUpdate{
		models.SectionOrgIdentity{}, models.SectionScope{}, models.SectionDataRisk{},
		models.SectionTechnology{}, models.SectionTeams{}, models.SectionCadence{},
	} {
		_, err := s.svc.SaveSection(s.ctx, s.tenantID, update, true)
		s.Require().NoError(err)
	}

	progress, err := s.svc.Progress(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Empty(progress.PendingSections)
	s.Require().NotNil(progress.Coverage)
	s.False(progress.Coverage.Complete)
	s.False(progress.CanComplete)

	// Completion itself stays section-gated: coverage is advisory.
	result, err := s.svc.Complete(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, result.Wizard.Status)
}

func (s *ServiceSuite) TestCompleteBlockedOnMissingSections() {
	_, err := s.svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)

	_, err = s.svc.Complete(s.ctx, s.tenantID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	var missing *models.MissingSectionsError
	s.Require().True(errors.As(err, &missing))
	s.Equal([]models.SectionCode{
		models.SectionA, models.SectionD, models.SectionE,
		models.SectionF, models.SectionH, models.SectionI,
	}, missing.Missing)
}

// TestDraftSaveBlocksCompletion resaves one gating section as a draft after
// the fast path and checks that readiness drops with it.
func (s *ServiceSuite) TestDraftSaveBlocksCompletion() {
	_, err := s.svc.SaveMinimal(s.ctx, s.tenantID, fullMinimal())
	s.Require().NoError(err)

	result, err := s.svc.SaveSection(s.ctx, s.tenantID, models.SectionDataRisk{
		DataTypesProcessed: []string{"pii", "financial"},
	}, false)
	s.Require().NoError(err)
	s.False(result.SectionComplete)

	validation, err := s.svc.Validate(s.ctx, s.tenantID, true)
	s.Require().NoError(err)
	s.False(validation.CanComplete)
	s.Equal([]models.SectionCode{models.SectionE}, validation.MissingSections)
	s.Equal(5, validation.CompletedSections)
	s.False(validation.SectionStatus[models.SectionE])
	s.True(validation.SectionStatus[models.SectionA])

	_, err = s.svc.Complete(s.ctx, s.tenantID)
	s.Require().Error(err)

	var missing *models.MissingSectionsError
	s.Require().True(errors.As(err, &missing))
	s.Equal([]models.SectionCode{models.SectionE}, missing.Missing)
}

// TestDraftSaveKeepsCoverageAdvisory answers a section fully but saves it as
// a draft: coverage sees the answers while the section gate stays closed.
func (s *ServiceSuite) TestDraftSaveKeepsCoverageAdvisory() {
	_, err := s.svc.Start(s.ctx, s.tenantID)
	s.Require().NoError(err)

	result, err := s.svc.SaveSection(s.ctx, s.tenantID, models.SectionDataRisk{
		DataTypesProcessed: []string{"pii"},
	}, false)
	s.Require().NoError(err)
	s.False(result.SectionComplete)
	s.Equal(0, result.ProgressPercent)
	s.Require().NotNil(result.Coverage)
	s.True(result.Coverage.Complete)

	state, err := s.svc.GetState(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal([]string{"pii"}, state.Sections.DataRisk.DataTypesProcessed)
	s.Empty(state.CompletedSections)
}

func (s *ServiceSuite) TestValidateFullReportsWarnings() {
	_, err := s.svc.SaveMinimal(s.ctx, s.tenantID, fullMinimal())
	s.Require().NoError(err)

	validation, err := s.svc.Validate(s.ctx, s.tenantID, false)
	s.Require().NoError(err)
	s.True(validation.CanComplete)
	s.NotEmpty(validation.Warnings)
	s.Contains(validation.Warnings, "optional section incomplete: B (Assurance Goals)")
}

func (s *ServiceSuite) TestSectionCoverage() {
	_, err := s.svc.SaveMinimal(s.ctx, s.tenantID, fullMinimal())
	s.Require().NoError(err)

	nc, err := s.svc.SectionCoverage(s.ctx, s.tenantID, models.SectionA)
	s.Require().NoError(err)
	s.Equal(coverage.NodeOrgIdentity, nc.NodeID)
	s.True(nc.Complete)

	nc, err = s.svc.SectionCoverage(s.ctx, s.tenantID, models.SectionC)
	s.Require().NoError(err)
	s.False(nc.Complete)
}

func (s *ServiceSuite) TestAllCoverage() {
	_, err := s.svc.SaveMinimal(s.ctx, s.tenantID, fullMinimal())
	s.Require().NoError(err)

	report, err := s.svc.AllCoverage(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Len(report.Missions, 3)
	s.False(report.Complete)
	s.Positive(report.Percent)
}

func (s *ServiceSuite) TestScopeFromAnswers() {
	_, err := s.svc.SaveMinimal(s.ctx, s.tenantID, fullMinimal())
	s.Require().NoError(err)

	derived, err := s.svc.Scope(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(1, derived.LegalEntityCount)
	s.Equal(1, derived.SystemCount)
	s.Equal([]string{"Production"}, derived.Environments)
	s.False(derived.PaymentCardInScope)
}

func TestSectionNodeMapping(t *testing.T) {
	m, err := coverage.Load()
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[coverage.NodeID]models.SectionCode)
	for _, code := range models.SectionOrder {
		nodeID := NodeForSection(code)
		if nodeID == "" {
			t.Fatalf("section %s has no node mapping", code)
		}
		if _, ok := m.Nodes[nodeID]; !ok {
			t.Fatalf("section %s maps to node %s which is not in the manifest", code, nodeID)
		}
		if prev, dup := seen[nodeID]; dup {
			t.Fatalf("node %s mapped from both %s and %s", nodeID, prev, code)
		}
		seen[nodeID] = code
	}
	if len(seen) != len(m.Nodes) {
		t.Fatalf("mapping covers %d nodes, manifest has %d", len(seen), len(m.Nodes))
	}
}
