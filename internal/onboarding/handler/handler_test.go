package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"grcadmin/internal/onboarding/audit"
	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/metrics"
	"grcadmin/internal/onboarding/scope"
	"grcadmin/internal/onboarding/service"
	wizardstore "grcadmin/internal/onboarding/store/wizard"
	"grcadmin/internal/platform/middleware"
)

var testMetrics = metrics.New()

type HandlerSuite struct {
	suite.Suite
	router   chi.Router
	tenantID string
}

func (s *HandlerSuite) SetupTest() {
	manifest, err := coverage.Load()
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(
		logger,
		wizardstore.NewInMemory(),
		manifest,
		scope.NewAnswerDeriver(),
		audit.NewLogEmitter(logger),
		testMetrics,
		service.Config{CoverageOnProgress: true, CoverageOnSave: true},
	)

	s.router = chi.NewRouter()
	s.router.Use(middleware.RequestMeta)
	New(svc, logger).Register(s.router)

	s.tenantID = uuid.NewString()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-User-ID", "admin@acme.example")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *HandlerSuite) base() string {
	return "/onboarding/wizard/tenants/" + s.tenantID
}

func (s *HandlerSuite) TestStartAndGetState() {
	rec := s.do(http.MethodPost, s.base()+"/start", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	started := s.decode(rec)
	s.Equal("in_progress", started["status"])
	s.Equal(float64(1), started["current_step"])

	rec = s.do(http.MethodGet, s.base()+"/", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	state := s.decode(rec)
	s.Equal(started["id"], state["id"])
	s.Equal("A", state["next_section"])
}

func (s *HandlerSuite) TestStartIsIdempotent() {
	first := s.decode(s.do(http.MethodPost, s.base()+"/start", nil))
	second := s.decode(s.do(http.MethodPost, s.base()+"/start", nil))
	s.Equal(first["id"], second["id"])
}

func (s *HandlerSuite) TestGetStateNotStarted() {
	rec := s.do(http.MethodGet, s.base()+"/", nil)
	s.Require().Equal(http.StatusNotFound, rec.Code)
	s.Equal("not_found", s.decode(rec)["error"])
}

func (s *HandlerSuite) TestInvalidTenantID() {
	rec := s.do(http.MethodPost, "/onboarding/wizard/tenants/not-a-uuid/start", nil)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Equal("invalid_input", s.decode(rec)["error"])
}

func (s *HandlerSuite) TestSaveSection() {
	s.do(http.MethodPost, s.base()+"/start", nil)

	rec := s.do(http.MethodPut, s.base()+"/sections/A", map[string]any{
		"legal_name_en":            "Acme Financial",
		"country_of_incorporation": "SA",
		"is_complete":              true,
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal("A", body["section"])
	s.Equal(true, body["section_complete"])
	s.Equal(float64(8), body["progress_percent"])
	s.Equal("B", body["next_section"])

	cov, ok := body["coverage"].(map[string]any)
	s.Require().True(ok, "coverage enrichment present")
	s.Equal("M3.A", cov["node_id"])
	s.Equal(false, cov["complete"])
}

func (s *HandlerSuite) TestSaveSectionMalformedBody() {
	s.do(http.MethodPost, s.base()+"/start", nil)

	req := httptest.NewRequest(http.MethodPut, s.base()+"/sections/A", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Equal("bad_request", s.decode(rec)["error"])
}

func (s *HandlerSuite) TestSaveSectionValidation() {
	s.do(http.MethodPost, s.base()+"/start", nil)

	rec := s.do(http.MethodPut, s.base()+"/sections/H", map[string]any{
		"org_admins": []map[string]any{{"name": "Admin"}}, // missing email
	})
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Equal("validation_error", s.decode(rec)["error"])
}

func (s *HandlerSuite) TestSaveTeamsDerivesAdminName() {
	s.do(http.MethodPost, s.base()+"/start", nil)

	rec := s.do(http.MethodPut, s.base()+"/sections/H", map[string]any{
		"org_admins": []map[string]any{{"email": "jane.doe@acme.example"}},
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	state := s.decode(s.do(http.MethodGet, s.base()+"/", nil))
	sections := state["sections"].(map[string]any)
	teams := sections["teams"].(map[string]any)
	admins := teams["org_admins"].([]any)
	s.Require().Len(admins, 1)
	s.Equal("Jane Doe", admins[0].(map[string]any)["name"])
}

func (s *HandlerSuite) TestSaveSectionDraftByDefault() {
	s.do(http.MethodPost, s.base()+"/start", nil)

	// No is_complete flag: the answers land but the section stays open.
	rec := s.do(http.MethodPut, s.base()+"/sections/A", map[string]any{
		"legal_name_en": "Acme Financial",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal(false, body["section_complete"])
	s.Equal(float64(0), body["progress_percent"])
}

func (s *HandlerSuite) TestSaveSectionBeforeStart() {
	rec := s.do(http.MethodPut, s.base()+"/sections/A", map[string]any{"legal_name_en": "Acme"})
	s.Require().Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestMinimalThenComplete() {
	rec := s.do(http.MethodPost, s.base()+"/minimal", minimalPayload())
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Equal(float64(50), body["progress_percent"])

	rec = s.do(http.MethodGet, s.base()+"/validate", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(true, s.decode(rec)["can_complete"])

	rec = s.do(http.MethodPost, s.base()+"/complete", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	completed := s.decode(rec)
	wizard := completed["wizard"].(map[string]any)
	s.Equal("completed", wizard["status"])
	s.Equal("admin@acme.example", wizard["completed_by"])
	s.NotNil(completed["scope"])

	// A second completion conflicts.
	rec = s.do(http.MethodPost, s.base()+"/complete", nil)
	s.Require().Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestCompleteBlockedOnMissingSections() {
	s.do(http.MethodPost, s.base()+"/start", nil)

	rec := s.do(http.MethodPost, s.base()+"/complete", nil)
	s.Require().Equal(http.StatusConflict, rec.Code)
	body := s.decode(rec)
	s.Equal("invariant_violation", body["error"])
	s.Equal([]any{"A", "D", "E", "F", "H", "I"}, body["missing_sections"])
}

func (s *HandlerSuite) TestDraftResaveReopensSection() {
	s.do(http.MethodPost, s.base()+"/minimal", minimalPayload())

	rec := s.do(http.MethodPut, s.base()+"/sections/E", map[string]any{
		"data_types_processed": []string{"pii"},
		"is_complete":          false,
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(false, s.decode(rec)["section_complete"])

	rec = s.do(http.MethodGet, s.base()+"/validate", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	validation := s.decode(rec)
	s.Equal(false, validation["can_complete"])
	s.Equal([]any{"E"}, validation["missing_sections"])
	s.Equal(float64(5), validation["completed_sections"])
	status := validation["section_status"].(map[string]any)
	s.Equal(false, status["E"])
	s.Equal(true, status["A"])

	rec = s.do(http.MethodPost, s.base()+"/complete", nil)
	s.Require().Equal(http.StatusConflict, rec.Code)
	s.Equal([]any{"E"}, s.decode(rec)["missing_sections"])
}

func (s *HandlerSuite) TestProgressNotStartedSynthesized() {
	rec := s.do(http.MethodGet, s.base()+"/progress", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal("not_started", body["status"])
	s.Equal(float64(12), body["total_steps"])
	s.Equal(false, body["can_complete"])
	s.Len(body["sections"].([]any), 12)
}

func (s *HandlerSuite) TestCoverageEndpoints() {
	s.do(http.MethodPost, s.base()+"/minimal", minimalPayload())

	rec := s.do(http.MethodGet, s.base()+"/coverage", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	report := s.decode(rec)
	s.Len(report["missions"].([]any), 3)
	s.Equal(false, report["complete"])

	rec = s.do(http.MethodGet, s.base()+"/coverage/A", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	node := s.decode(rec)
	s.Equal("M3.A", node["node_id"])
	s.Equal(true, node["complete"])

	rec = s.do(http.MethodGet, s.base()+"/coverage/Z", nil)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestScopeEndpoint() {
	s.do(http.MethodPost, s.base()+"/minimal", minimalPayload())

	rec := s.do(http.MethodGet, s.base()+"/scope", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	derived := s.decode(rec)
	s.Equal(float64(1), derived["system_count"])
	s.Equal(float64(1), derived["legal_entity_count"])
}

// minimalPayload is the JSON form of a complete fast-path request.
func minimalPayload() map[string]any {
	return map[string]any{
		"org_identity": map[string]any{
			"legal_name_en":            "Acme Financial",
			"country_of_incorporation": "SA",
			"primary_hq_location":      "Riyadh",
			"timezone":                 "Asia/Riyadh",
			"primary_language":         "English",
			"corporate_email_domains":  []string{"acme.example"},
			"organization_type":        "PrivateCompany",
			"industry_sectors":         []string{"Banking"},
		},
		"scope": map[string]any{
			"in_scope_legal_entities": []map[string]any{{"name": "Acme KSA", "primary": true}},
			"in_scope_business_units": []map[string]any{{"code": "RETAIL", "name": "Retail"}},
			"in_scope_systems":        []map[string]any{{"code": "CORE", "name": "Core Banking"}},
			"in_scope_processes":      []string{"payments"},
			"in_scope_environments":   []string{"Production"},
			"in_scope_locations":      []map[string]any{{"type": "cloud", "name": "aws-me-south-1"}},
		},
		"data_risk": map[string]any{
			"data_types_processed": []string{"pii"},
		},
		"technology": map[string]any{
			"identity_provider": "AzureAD",
			"itsm_platform":     "Jira",
			"cloud_providers":   []string{"AWS"},
		},
		"teams": map[string]any{
			"org_admins":            []map[string]any{{"name": "Admin", "email": "admin@acme.example"}},
			"notification_channels": []string{"email"},
			"escalation_target":     "ciso@acme.example",
		},
		"cadence": map[string]any{
			"evidence_submit_sla_days": 5,
			"remediation_sla_days":     map[string]int{"critical": 7},
		},
	}
}
