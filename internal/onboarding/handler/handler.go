// Package handler exposes the onboarding wizard over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/models"
	"grcadmin/internal/onboarding/scope"
	"grcadmin/internal/onboarding/service"
	"grcadmin/pkg/domain"
	dErrors "grcadmin/pkg/domain-errors"
	"grcadmin/pkg/platform/httputil"
	"grcadmin/pkg/requestcontext"
)

// Service defines the onboarding operations the handler depends on.
type Service interface {
	Start(ctx context.Context, tenantID domain.TenantID) (*models.Wizard, error)
	GetState(ctx context.Context, tenantID domain.TenantID) (*models.Wizard, error)
	SaveSection(ctx context.Context, tenantID domain.TenantID, update models.SectionUpdate, isComplete bool) (*service.SaveResult, error)
	SaveMinimal(ctx context.Context, tenantID domain.TenantID, minimal models.MinimalOnboarding) (*models.Wizard, error)
	Progress(ctx context.Context, tenantID domain.TenantID) (*service.ProgressSummary, error)
	Validate(ctx context.Context, tenantID domain.TenantID, minimalOnly bool) (*service.ValidationResult, error)
	Complete(ctx context.Context, tenantID domain.TenantID) (*service.CompletionResult, error)
	SectionCoverage(ctx context.Context, tenantID domain.TenantID, code models.SectionCode) (*coverage.NodeCoverage, error)
	AllCoverage(ctx context.Context, tenantID domain.TenantID) (*coverage.Report, error)
	Scope(ctx context.Context, tenantID domain.TenantID) (*scope.DerivedScope, error)
}

// Handler wires onboarding endpoints to the onboarding service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an onboarding handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the wizard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/onboarding/wizard/tenants/{tenantID}", func(r chi.Router) {
		r.Post("/start", h.HandleStart)
		r.Get("/", h.HandleGetState)
		r.Get("/progress", h.HandleProgress)
		r.Get("/validate", h.HandleValidate)
		r.Post("/complete", h.HandleComplete)
		r.Post("/minimal", h.HandleSaveMinimal)
		r.Get("/coverage", h.HandleAllCoverage)
		r.Get("/coverage/{sectionCode}", h.HandleSectionCoverage)
		r.Get("/scope", h.HandleScope)

		r.Put("/sections/A", h.HandleSaveOrgIdentity)
		r.Put("/sections/B", h.HandleSaveAssurance)
		r.Put("/sections/C", h.HandleSaveRegulatory)
		r.Put("/sections/D", h.HandleSaveScope)
		r.Put("/sections/E", h.HandleSaveDataRisk)
		r.Put("/sections/F", h.HandleSaveTechnology)
		r.Put("/sections/G", h.HandleSaveOwnership)
		r.Put("/sections/H", h.HandleSaveTeams)
		r.Put("/sections/I", h.HandleSaveCadence)
		r.Put("/sections/J", h.HandleSaveEvidence)
		r.Put("/sections/K", h.HandleSaveBaseline)
		r.Put("/sections/L", h.HandleSaveSuccessMetrics)
	})
}

// HandleStart handles POST /onboarding/wizard/tenants/{tenantID}/start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	wizard, err := h.service.Start(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, r, "start onboarding", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromWizard(wizard))
}

// HandleGetState handles GET /onboarding/wizard/tenants/{tenantID}.
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	wizard, err := h.service.GetState(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, r, "get onboarding state", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromWizard(wizard))
}

// HandleProgress handles GET /onboarding/wizard/tenants/{tenantID}/progress.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Progress(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, r, "get onboarding progress", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleValidate handles GET /onboarding/wizard/tenants/{tenantID}/validate.
// The default check is the completion gate; ?full=true adds advisory warnings
// for optional sections and coverage gaps.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	minimalOnly := r.URL.Query().Get("full") != "true"
	result, err := h.service.Validate(ctx, tenantID, minimalOnly)
	if err != nil {
		h.writeServiceError(w, r, "validate onboarding", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleComplete handles POST /onboarding/wizard/tenants/{tenantID}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Complete(ctx, tenantID)
	if err != nil {
		var missing *models.MissingSectionsError
		if errors.As(err, &missing) {
			httputil.WriteJSON(w, http.StatusConflict, completionBlockedResponse{
				Error:            string(dErrors.CodeOf(err)),
				ErrorDescription: dErrors.MessageOf(err),
				MissingSections:  missing.Missing,
			})
			return
		}
		h.writeServiceError(w, r, "complete onboarding", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCompletion(result))
}

// HandleSaveMinimal handles POST /onboarding/wizard/tenants/{tenantID}/minimal.
func (h *Handler) HandleSaveMinimal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[saveMinimalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	wizard, err := h.service.SaveMinimal(ctx, tenantID, req.MinimalOnboarding)
	if err != nil {
		h.writeServiceError(w, r, "save minimal onboarding", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromWizard(wizard))
}

// HandleAllCoverage handles GET /onboarding/wizard/tenants/{tenantID}/coverage.
func (h *Handler) HandleAllCoverage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	report, err := h.service.AllCoverage(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, r, "evaluate coverage", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleSectionCoverage handles GET .../coverage/{sectionCode}.
func (h *Handler) HandleSectionCoverage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	code, err := models.ParseSectionCode(chi.URLParam(r, "sectionCode"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	nc, err := h.service.SectionCoverage(ctx, tenantID, code)
	if err != nil {
		h.writeServiceError(w, r, "evaluate section coverage", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nc)
}

// HandleScope handles GET /onboarding/wizard/tenants/{tenantID}/scope.
func (h *Handler) HandleScope(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	derived, err := h.service.Scope(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, r, "derive scope", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, derived)
}

func (h *Handler) HandleSaveOrgIdentity(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveOrgIdentityRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionOrgIdentity, req.IsComplete)
	}
}

func (h *Handler) HandleSaveAssurance(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveAssuranceRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionAssurance, req.IsComplete)
	}
}

func (h *Handler) HandleSaveRegulatory(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveRegulatoryRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionRegulatory, req.IsComplete)
	}
}

func (h *Handler) HandleSaveScope(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveScopeRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionScope, req.IsComplete)
	}
}

func (h *Handler) HandleSaveDataRisk(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveDataRiskRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionDataRisk, req.IsComplete)
	}
}

func (h *Handler) HandleSaveTechnology(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveTechnologyRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionTechnology, req.IsComplete)
	}
}

func (h *Handler) HandleSaveOwnership(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveOwnershipRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionOwnership, req.IsComplete)
	}
}

func (h *Handler) HandleSaveTeams(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveTeamsRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionTeams, req.IsComplete)
	}
}

func (h *Handler) HandleSaveCadence(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveCadenceRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionCadence, req.IsComplete)
	}
}

func (h *Handler) HandleSaveEvidence(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveEvidenceRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionEvidence, req.IsComplete)
	}
}

func (h *Handler) HandleSaveBaseline(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveBaselineRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionBaseline, req.IsComplete)
	}
}

func (h *Handler) HandleSaveSuccessMetrics(w http.ResponseWriter, r *http.Request) {
	if req, tenantID, ok := decodeSave[saveSuccessMetricsRequest](h, w, r); ok {
		h.saveSection(w, r, tenantID, req.SectionSuccessMetrics, req.IsComplete)
	}
}

// decodeSave parses the tenant ID and decodes a section save request.
func decodeSave[T any, PT interface {
	*T
	httputil.Validatable
}](h *Handler, w http.ResponseWriter, r *http.Request) (PT, domain.TenantID, bool) {
	ctx := r.Context()
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return nil, domain.TenantID{}, false
	}
	req, ok := httputil.DecodeAndPrepare[T, PT](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return nil, domain.TenantID{}, false
	}
	return req, tenantID, true
}

func (h *Handler) saveSection(w http.ResponseWriter, r *http.Request, tenantID domain.TenantID, update models.SectionUpdate, isComplete bool) {
	ctx := r.Context()
	result, err := h.service.SaveSection(ctx, tenantID, update, isComplete)
	if err != nil {
		h.writeServiceError(w, r, "save section "+string(update.SectionCode()), err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) tenantID(w http.ResponseWriter, r *http.Request) (domain.TenantID, bool) {
	tenantID, err := domain.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.TenantID{}, false
	}
	return tenantID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
