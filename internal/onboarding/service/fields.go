package service

import (
	"strings"

	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/models"
)

// sectionNodes maps each questionnaire section to its manifest node. The
// mapping is total over both enumerations; TestSectionNodeMapping pins that.
var sectionNodes = map[models.SectionCode]coverage.NodeID{
	models.SectionA: coverage.NodeOrgIdentity,
	models.SectionB: coverage.NodeAssurance,
	models.SectionC: coverage.NodeRegulatory,
	models.SectionD: coverage.NodeScope,
	models.SectionE: coverage.NodeDataRisk,
	models.SectionF: coverage.NodeTechnology,
	models.SectionG: coverage.NodeOwnership,
	models.SectionH: coverage.NodeTeams,
	models.SectionI: coverage.NodeCadence,
	models.SectionJ: coverage.NodeEvidence,
	models.SectionK: coverage.NodeBaseline,
	models.SectionL: coverage.NodeSuccessMetrics,
}

// NodeForSection resolves a section code to its manifest node.
func NodeForSection(code models.SectionCode) coverage.NodeID {
	return sectionNodes[code]
}

// FieldProvider adapts wizard answers to the coverage evaluator's field-key
// lookup. Unsaved sections resolve every one of their keys to nil.
type FieldProvider struct {
	sections models.Sections
}

// NewFieldProvider wraps a snapshot of the wizard's answers.
func NewFieldProvider(sections models.Sections) FieldProvider {
	return FieldProvider{sections: sections}
}

// FieldValue implements coverage.FieldValueProvider.
func (p FieldProvider) FieldValue(key coverage.FieldKey) any {
	k := string(key)
	switch {
	case strings.HasPrefix(k, "W.A."):
		return p.orgIdentityValue(k)
	case strings.HasPrefix(k, "W.B."):
		return p.assuranceValue(k)
	case strings.HasPrefix(k, "W.C."):
		return p.regulatoryValue(k)
	case strings.HasPrefix(k, "W.D."):
		return p.scopeValue(k)
	case strings.HasPrefix(k, "W.E."):
		return p.dataRiskValue(k)
	case strings.HasPrefix(k, "W.F."):
		return p.technologyValue(k)
	case strings.HasPrefix(k, "W.G."):
		return p.ownershipValue(k)
	case strings.HasPrefix(k, "W.H."):
		return p.teamsValue(k)
	case strings.HasPrefix(k, "W.I."):
		return p.cadenceValue(k)
	case strings.HasPrefix(k, "W.J."):
		return p.evidenceValue(k)
	case strings.HasPrefix(k, "W.K."):
		return p.baselineValue(k)
	case strings.HasPrefix(k, "W.L."):
		return p.successMetricsValue(k)
	default:
		return nil
	}
}

func (p FieldProvider) orgIdentityValue(key string) any {
	s := p.sections.OrgIdentity
	if s == nil {
		return nil
	}
	switch key {
	case "W.A.1.legal_name_en":
		return s.LegalNameEn
	case "W.A.2.legal_name_ar":
		return s.LegalNameAr
	case "W.A.3.trade_name":
		return s.TradeName
	case "W.A.4.country_of_incorporation":
		return s.CountryOfIncorporation
	case "W.A.5.operating_countries":
		return s.OperatingCountries
	case "W.A.6.primary_hq_location":
		return s.PrimaryHQLocation
	case "W.A.7.timezone":
		return s.Timezone
	case "W.A.8.primary_language":
		return s.PrimaryLanguage
	case "W.A.9.corporate_email_domains":
		return s.CorporateEmailDomains
	case "W.A.10.domain_verification_method":
		return s.DomainVerificationMethod
	case "W.A.11.organization_type":
		return s.OrganizationType
	case "W.A.12.industry_sector":
		return s.IndustrySectors
	case "W.A.13.data_residency_requirements":
		return s.DataResidencyCountries
	default:
		return nil
	}
}

func (p FieldProvider) assuranceValue(key string) any {
	s := p.sections.Assurance
	if s == nil {
		return nil
	}
	switch key {
	case "W.B.1.primary_driver":
		return s.PrimaryDriver
	case "W.B.2.target_compliance_date":
		return s.TargetDate
	case "W.B.3.current_pain_points":
		return s.CurrentPainPoints
	case "W.B.4.desired_maturity":
		return s.DesiredMaturity
	case "W.B.5.reporting_audience":
		return s.ReportingAudience
	default:
		return nil
	}
}

func (p FieldProvider) regulatoryValue(key string) any {
	s := p.sections.Regulatory
	if s == nil {
		return nil
	}
	switch key {
	case "W.C.1.primary_regulators":
		return s.PrimaryRegulators
	case "W.C.2.secondary_regulators":
		return s.SecondaryRegulators
	case "W.C.3.mandatory_frameworks":
		return s.MandatoryFrameworks
	case "W.C.4.benchmarking_frameworks":
		return s.BenchmarkingFrameworks
	case "W.C.5.internal_policies":
		return s.InternalPolicies
	case "W.C.6.certifications_held":
		return s.CertificationsHeld
	case "W.C.7.audit_scope_type":
		return s.AuditScopeType
	default:
		return nil
	}
}

func (p FieldProvider) scopeValue(key string) any {
	s := p.sections.Scope
	if s == nil {
		return nil
	}
	switch key {
	case "W.D.1.in_scope_legal_entities":
		return s.InScopeLegalEntities
	case "W.D.2.in_scope_business_units":
		return s.InScopeBusinessUnits
	case "W.D.3.in_scope_systems_apps":
		return s.InScopeSystems
	case "W.D.4.in_scope_processes":
		return s.InScopeProcesses
	case "W.D.5.in_scope_environments":
		return s.InScopeEnvironments
	case "W.D.6.in_scope_locations":
		return s.InScopeLocations
	case "W.D.7.criticality_tiers":
		return s.CriticalityTiers
	case "W.D.8.important_business_services":
		return s.ImportantBusinessServices
	case "W.D.9.exclusions":
		return s.Exclusions
	default:
		return nil
	}
}

func (p FieldProvider) dataRiskValue(key string) any {
	s := p.sections.DataRisk
	if s == nil {
		return nil
	}
	switch key {
	case "W.E.1.data_types_processed":
		return s.DataTypesProcessed
	case "W.E.2.payment_card_data":
		return s.HasPaymentCardData
	case "W.E.2b.payment_card_details":
		return s.PaymentCardDetails
	case "W.E.3.cross_border_transfers":
		return s.CrossBorderTransfers
	case "W.E.4.customer_volume_tier":
		return s.CustomerVolumeTier
	case "W.E.5.transaction_volume_tier":
		return s.TransactionVolumeTier
	case "W.E.6.internet_facing_systems":
		return s.InternetFacingSystems
	case "W.E.7.third_party_processors":
		return s.ThirdPartyProcessors
	default:
		return nil
	}
}

func (p FieldProvider) technologyValue(key string) any {
	s := p.sections.Technology
	if s == nil {
		return nil
	}
	switch key {
	case "W.F.1.identity_provider":
		return s.IdentityProvider
	case "W.F.2.sso_enabled":
		return s.SSOEnabled
	case "W.F.2b.sso_protocol":
		return s.SSOProtocol
	case "W.F.3.scim_enabled":
		return s.SCIMEnabled
	case "W.F.4.itsm_ticketing_platform":
		return s.ITSMPlatform
	case "W.F.5.evidence_repository":
		return s.EvidenceRepository
	case "W.F.6.siem_platform":
		return s.SIEMPlatform
	case "W.F.7.vulnerability_management":
		return s.VulnerabilityManagement
	case "W.F.8.edr_platform":
		return s.EDRPlatform
	case "W.F.9.cloud_providers":
		return s.CloudProviders
	case "W.F.10.erp_platform":
		return s.ERPPlatform
	case "W.F.11.cmdb_source":
		return s.CMDBSource
	case "W.F.12.cicd_tools":
		return s.CICDTools
	case "W.F.13.backup_dr_tooling":
		return s.BackupDRTooling
	default:
		return nil
	}
}

func (p FieldProvider) ownershipValue(key string) any {
	s := p.sections.Ownership
	if s == nil {
		return nil
	}
	switch key {
	case "W.G.1.ownership_approach":
		return s.OwnershipApproach
	case "W.G.2.default_owner_team":
		return s.DefaultOwnerTeam
	case "W.G.3.exception_approver_role":
		return s.ExceptionApproverRole
	case "W.G.4.regulatory_approver_role":
		return s.RegulatoryApproverRole
	case "W.G.5.effectiveness_signoff_role":
		return s.EffectivenessSignoffRole
	case "W.G.6.internal_audit_contact":
		return s.InternalAuditContact
	case "W.G.7.risk_committee_cadence":
		return s.RiskCommitteeCadence
	default:
		return nil
	}
}

func (p FieldProvider) teamsValue(key string) any {
	s := p.sections.Teams
	if s == nil {
		return nil
	}
	switch key {
	case "W.H.1.organization_admins":
		return s.OrgAdmins
	case "W.H.2.create_teams_now":
		return s.CreateTeamsNow
	case "W.H.3.team_definitions":
		return s.Teams
	case "W.H.4.team_members":
		return s.TeamMembers
	case "W.H.5.role_catalog":
		return s.RoleCatalog
	case "W.H.6.raci_mapping_needed":
		return s.RACIMappingNeeded
	case "W.H.6b.raci_matrix":
		return s.RACIMappings
	case "W.H.7.approval_gates":
		return s.ApprovalGatesNeeded
	case "W.H.7b.approval_gate_config":
		return s.ApprovalGates
	case "W.H.8.delegation_rules":
		return s.DelegationRules
	case "W.H.9.notification_preferences":
		return s.NotificationChannels
	case "W.H.10.escalation_path":
		return s.EscalationTarget
	default:
		return nil
	}
}

func (p FieldProvider) cadenceValue(key string) any {
	s := p.sections.Cadence
	if s == nil {
		return nil
	}
	switch key {
	case "W.I.1.evidence_frequency_by_domain":
		return s.EvidenceFrequencyByDomain
	case "W.I.2.access_review_frequency":
		return s.AccessReviewFrequency
	case "W.I.3.vulnerability_review_frequency":
		return s.VulnerabilityReviewFrequency
	case "W.I.4.backup_review_frequency":
		return s.BackupReviewFrequency
	case "W.I.5.restore_test_cadence":
		return s.RestoreTestCadence
	case "W.I.6.dr_exercise_cadence":
		return s.DRExerciseCadence
	case "W.I.7.incident_tabletop_cadence":
		return s.IncidentTabletopCadence
	case "W.I.8.evidence_sla_submit_days":
		return s.EvidenceSubmitSLADays
	case "W.I.9.remediation_sla_by_severity":
		return s.RemediationSLADays
	case "W.I.10.exception_expiry_days":
		return s.ExceptionExpiryDays
	case "W.I.11.audit_request_handling":
		return s.AuditRequestHandling
	default:
		return nil
	}
}

func (p FieldProvider) evidenceValue(key string) any {
	s := p.sections.Evidence
	if s == nil {
		return nil
	}
	switch key {
	case "W.J.1.naming_convention_required":
		return s.NamingConventionRequired
	case "W.J.1b.naming_pattern":
		return s.NamingPattern
	case "W.J.2.storage_location_by_domain":
		return s.StorageLocationByDomain
	case "W.J.3.retention_period_years":
		return s.RetentionPeriodYears
	case "W.J.4.evidence_access_rules":
		return s.AccessRules
	case "W.J.5.acceptable_evidence_types":
		return s.AcceptableEvidenceTypes
	case "W.J.6.sampling_guidance":
		return s.Sampling
	case "W.J.7.confidential_handling":
		return s.ConfidentialHandling
	default:
		return nil
	}
}

func (p FieldProvider) baselineValue(key string) any {
	s := p.sections.Baseline
	if s == nil {
		return nil
	}
	switch key {
	case "W.K.1.adopt_default_baseline":
		return s.AdoptDefaultBaseline
	case "W.K.2.overlay_selections":
		return s.Overlays
	case "W.K.3.custom_requirements":
		return s.CustomRequirements
	default:
		return nil
	}
}

func (p FieldProvider) successMetricsValue(key string) any {
	s := p.sections.SuccessMetrics
	if s == nil {
		return nil
	}
	switch key {
	case "W.L.1.success_metrics_top3":
		return s.SuccessMetrics
	case "W.L.2.audit_prep_hours_per_month":
		return s.AuditPrepHoursPerMonth
	case "W.L.3.remediation_closure_days":
		return s.RemediationClosureDays
	case "W.L.4.overdue_controls_per_month":
		return s.OverdueControlsPerMonth
	case "W.L.5.target_improvement_percent":
		return s.TargetImprovementPercent
	case "W.L.6.pilot_scope":
		return s.PilotDomains
	default:
		return nil
	}
}
