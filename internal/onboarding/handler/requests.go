package handler

import (
	"grcadmin/internal/onboarding/models"
	dErrors "grcadmin/pkg/domain-errors"
	"grcadmin/pkg/email"
	pstrings "grcadmin/pkg/platform/strings"
)

// Section payloads may be partial: required-field gaps are the coverage
// engine's business, not the decoder's. Validate only rejects payloads that
// are structurally broken, like list entries missing their identity or
// negative durations, and normalizes what it can fix in place. Each payload
// carries the caller's is_complete self-report, which drives the completed
// set; an omitted flag means the section is saved as a draft.

type saveOrgIdentityRequest struct {
	models.SectionOrgIdentity
	IsComplete bool `json:"is_complete"`
}

func (r *saveOrgIdentityRequest) Validate() error {
	r.CorporateEmailDomains = pstrings.DedupeAndTrimLower(r.CorporateEmailDomains)
	return nil
}

type saveAssuranceRequest struct {
	models.SectionAssurance
	IsComplete bool `json:"is_complete"`
}

func (r *saveAssuranceRequest) Validate() error {
	for _, p := range r.CurrentPainPoints {
		if p.PainPoint == "" {
			return dErrors.New(dErrors.CodeValidation, "pain point entries need a pain_point")
		}
		if p.Rank < 1 {
			return dErrors.New(dErrors.CodeValidation, "pain point rank must be at least 1")
		}
	}
	return nil
}

type saveRegulatoryRequest struct {
	models.SectionRegulatory
	IsComplete bool `json:"is_complete"`
}

func (r *saveRegulatoryRequest) Validate() error {
	for _, reg := range r.PrimaryRegulators {
		if reg.Code == "" {
			return dErrors.New(dErrors.CodeValidation, "regulator entries need a code")
		}
	}
	return nil
}

type saveScopeRequest struct {
	models.SectionScope
	IsComplete bool `json:"is_complete"`
}

func (r *saveScopeRequest) Validate() error {
	for _, e := range r.InScopeLegalEntities {
		if e.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "legal entity entries need a name")
		}
	}
	for _, u := range r.InScopeBusinessUnits {
		if u.Code == "" || u.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "business unit entries need a code and name")
		}
	}
	for _, sys := range r.InScopeSystems {
		if sys.Code == "" || sys.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "system entries need a code and name")
		}
		if sys.CriticalityTier < 0 {
			return dErrors.New(dErrors.CodeValidation, "system criticality_tier must not be negative")
		}
	}
	for _, t := range r.CriticalityTiers {
		if t.RTOHours < 0 || t.RPOHours < 0 {
			return dErrors.New(dErrors.CodeValidation, "criticality tier RTO/RPO hours must not be negative")
		}
	}
	return nil
}

type saveDataRiskRequest struct {
	models.SectionDataRisk
	IsComplete bool `json:"is_complete"`
}

func (r *saveDataRiskRequest) Validate() error {
	for _, t := range r.CrossBorderTransfers {
		if t.SourceCountry == "" || t.DestinationCountry == "" {
			return dErrors.New(dErrors.CodeValidation, "cross-border transfer entries need source and destination countries")
		}
	}
	for _, p := range r.ThirdPartyProcessors {
		if p.Vendor == "" {
			return dErrors.New(dErrors.CodeValidation, "third-party processor entries need a vendor")
		}
	}
	return nil
}

type saveTechnologyRequest struct {
	models.SectionTechnology
	IsComplete bool `json:"is_complete"`
}

func (r *saveTechnologyRequest) Validate() error {
	return nil
}

type saveOwnershipRequest struct {
	models.SectionOwnership
	IsComplete bool `json:"is_complete"`
}

func (r *saveOwnershipRequest) Validate() error {
	return nil
}

type saveTeamsRequest struct {
	models.SectionTeams
	IsComplete bool `json:"is_complete"`
}

func (r *saveTeamsRequest) Validate() error {
	for i, a := range r.OrgAdmins {
		if !email.Valid(a.Email) {
			return dErrors.New(dErrors.CodeValidation, "org admin entries need a valid email")
		}
		if a.Name == "" {
			first, last := email.DeriveNameFromEmail(a.Email)
			r.OrgAdmins[i].Name = first + " " + last
		}
	}
	for _, t := range r.Teams {
		if t.Code == "" || t.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "team entries need a code and name")
		}
	}
	for i, m := range r.TeamMembers {
		if m.TeamCode == "" || !email.Valid(m.Email) {
			return dErrors.New(dErrors.CodeValidation, "team member entries need a team_code and a valid email")
		}
		if m.Name == "" {
			first, last := email.DeriveNameFromEmail(m.Email)
			r.TeamMembers[i].Name = first + " " + last
		}
	}
	for _, g := range r.ApprovalGates {
		if g.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "approval gate entries need a name")
		}
		if g.RequiredApprovals < 0 {
			return dErrors.New(dErrors.CodeValidation, "required_approvals must not be negative")
		}
	}
	for _, d := range r.DelegationRules {
		if d.FromRole == "" || d.ToRole == "" {
			return dErrors.New(dErrors.CodeValidation, "delegation rules need from_role and to_role")
		}
		if d.MaxDays < 0 {
			return dErrors.New(dErrors.CodeValidation, "delegation max_days must not be negative")
		}
	}
	if r.EscalationAfterDays < 0 {
		return dErrors.New(dErrors.CodeValidation, "escalation_after_days must not be negative")
	}
	return nil
}

type saveCadenceRequest struct {
	models.SectionCadence
	IsComplete bool `json:"is_complete"`
}

func (r *saveCadenceRequest) Validate() error {
	if r.EvidenceSubmitSLADays < 0 {
		return dErrors.New(dErrors.CodeValidation, "evidence_submit_sla_days must not be negative")
	}
	for severity, days := range r.RemediationSLADays {
		if days < 0 {
			return dErrors.Newf(dErrors.CodeValidation, "remediation SLA for %q must not be negative", severity)
		}
	}
	if r.ExceptionExpiryDays < 0 {
		return dErrors.New(dErrors.CodeValidation, "exception_expiry_days must not be negative")
	}
	return nil
}

type saveEvidenceRequest struct {
	models.SectionEvidence
	IsComplete bool `json:"is_complete"`
}

func (r *saveEvidenceRequest) Validate() error {
	if r.RetentionPeriodYears < 0 {
		return dErrors.New(dErrors.CodeValidation, "retention_period_years must not be negative")
	}
	if r.Sampling != nil && r.Sampling.MinimumSampleSize < 0 {
		return dErrors.New(dErrors.CodeValidation, "minimum_sample_size must not be negative")
	}
	return nil
}

type saveBaselineRequest struct {
	models.SectionBaseline
	IsComplete bool `json:"is_complete"`
}

func (r *saveBaselineRequest) Validate() error {
	for _, c := range r.CustomRequirements {
		if c.Code == "" || c.Text == "" {
			return dErrors.New(dErrors.CodeValidation, "custom requirement entries need a code and text")
		}
	}
	return nil
}

type saveSuccessMetricsRequest struct {
	models.SectionSuccessMetrics
	IsComplete bool `json:"is_complete"`
}

func (r *saveSuccessMetricsRequest) Validate() error {
	if r.AuditPrepHoursPerMonth != nil && *r.AuditPrepHoursPerMonth < 0 {
		return dErrors.New(dErrors.CodeValidation, "audit_prep_hours_per_month must not be negative")
	}
	if r.RemediationClosureDays != nil && *r.RemediationClosureDays < 0 {
		return dErrors.New(dErrors.CodeValidation, "remediation_closure_days must not be negative")
	}
	return nil
}

type saveMinimalRequest struct {
	models.MinimalOnboarding
}

func (r *saveMinimalRequest) Validate() error {
	org := saveOrgIdentityRequest{SectionOrgIdentity: r.OrgIdentity}
	scope := saveScopeRequest{SectionScope: r.Scope}
	dataRisk := saveDataRiskRequest{SectionDataRisk: r.DataRisk}
	technology := saveTechnologyRequest{SectionTechnology: r.Technology}
	teams := saveTeamsRequest{SectionTeams: r.Teams}
	cadence := saveCadenceRequest{SectionCadence: r.Cadence}

	for _, c := range []interface{ Validate() error }{
		&org, &scope, &dataRisk, &technology, &teams, &cadence,
	} {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	// Carry normalized values back into the aggregate payload.
	r.OrgIdentity = org.SectionOrgIdentity
	r.Teams = teams.SectionTeams
	return nil
}
