package models

import "time"

// Sections holds the answers for every questionnaire section. A nil group
// means the section has never been saved.
type Sections struct {
	OrgIdentity    *SectionOrgIdentity    `json:"org_identity,omitempty"`
	Assurance      *SectionAssurance      `json:"assurance,omitempty"`
	Regulatory     *SectionRegulatory     `json:"regulatory,omitempty"`
	Scope          *SectionScope          `json:"scope,omitempty"`
	DataRisk       *SectionDataRisk       `json:"data_risk,omitempty"`
	Technology     *SectionTechnology     `json:"technology,omitempty"`
	Ownership      *SectionOwnership      `json:"ownership,omitempty"`
	Teams          *SectionTeams          `json:"teams,omitempty"`
	Cadence        *SectionCadence        `json:"cadence,omitempty"`
	Evidence       *SectionEvidence       `json:"evidence,omitempty"`
	Baseline       *SectionBaseline       `json:"baseline,omitempty"`
	SuccessMetrics *SectionSuccessMetrics `json:"success_metrics,omitempty"`
}

// SectionUpdate is one saved section payload. Each section type applies
// itself to the right group of the aggregate.
type SectionUpdate interface {
	SectionCode() SectionCode
	apply(*Sections)
}

// SectionOrgIdentity is section A.
type SectionOrgIdentity struct {
	LegalNameEn              string   `json:"legal_name_en"`
	LegalNameAr              string   `json:"legal_name_ar,omitempty"`
	TradeName                string   `json:"trade_name,omitempty"`
	CountryOfIncorporation   string   `json:"country_of_incorporation"`
	OperatingCountries       []string `json:"operating_countries,omitempty"`
	PrimaryHQLocation        string   `json:"primary_hq_location"`
	Timezone                 string   `json:"timezone"`
	PrimaryLanguage          string   `json:"primary_language"`
	CorporateEmailDomains    []string `json:"corporate_email_domains"`
	DomainVerificationMethod string   `json:"domain_verification_method,omitempty"`
	OrganizationType         string   `json:"organization_type"`
	IndustrySectors          []string `json:"industry_sectors"`
	DataResidencyCountries   []string `json:"data_residency_countries,omitempty"`
}

func (s SectionOrgIdentity) SectionCode() SectionCode { return SectionA }
func (s SectionOrgIdentity) apply(g *Sections)        { g.OrgIdentity = &s }

// PainPointRanking ranks one operational pain point.
type PainPointRanking struct {
	PainPoint string `json:"pain_point"`
	Rank      int    `json:"rank"`
}

// SectionAssurance is section B.
type SectionAssurance struct {
	PrimaryDriver     string             `json:"primary_driver"`
	TargetDate        *time.Time         `json:"target_date,omitempty"`
	CurrentPainPoints []PainPointRanking `json:"current_pain_points,omitempty"`
	DesiredMaturity   string             `json:"desired_maturity,omitempty"`
	ReportingAudience []string           `json:"reporting_audience,omitempty"`
}

func (s SectionAssurance) SectionCode() SectionCode { return SectionB }
func (s SectionAssurance) apply(g *Sections)        { g.Assurance = &s }

// Regulator identifies one supervisory authority.
type Regulator struct {
	Jurisdiction string `json:"jurisdiction"`
	Code         string `json:"code"`
	Name         string `json:"name,omitempty"`
}

// Certification records a held certification and its validity window.
type Certification struct {
	Type        string     `json:"type"`
	CertifiedAt *time.Time `json:"certified_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Body        string     `json:"body,omitempty"`
}

// SectionRegulatory is section C.
type SectionRegulatory struct {
	PrimaryRegulators      []Regulator     `json:"primary_regulators"`
	SecondaryRegulators    []string        `json:"secondary_regulators,omitempty"`
	MandatoryFrameworks    []string        `json:"mandatory_frameworks,omitempty"`
	BenchmarkingFrameworks []string        `json:"benchmarking_frameworks,omitempty"`
	InternalPolicies       []string        `json:"internal_policies,omitempty"`
	CertificationsHeld     []Certification `json:"certifications_held,omitempty"`
	AuditScopeType         string          `json:"audit_scope_type,omitempty"`
}

func (s SectionRegulatory) SectionCode() SectionCode { return SectionC }
func (s SectionRegulatory) apply(g *Sections)        { g.Regulatory = &s }

// LegalEntityScope is one in-scope legal entity.
type LegalEntityScope struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Country            string `json:"country,omitempty"`
	Primary            bool   `json:"primary,omitempty"`
}

// BusinessUnitScope is one in-scope business unit.
type BusinessUnitScope struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	OwnerEmail string `json:"owner_email,omitempty"`
}

// SystemScope is one in-scope system or application.
type SystemScope struct {
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	Type                  string `json:"type,omitempty"`
	CriticalityTier       int    `json:"criticality_tier,omitempty"`
	OwnerEmail            string `json:"owner_email,omitempty"`
	HostingLocation       string `json:"hosting_location,omitempty"`
	ProcessesPersonalData bool   `json:"processes_personal_data,omitempty"`
	ProcessesPaymentData  bool   `json:"processes_payment_data,omitempty"`
}

// LocationScope is one in-scope physical or cloud location.
type LocationScope struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	Country       string `json:"country,omitempty"`
	City          string `json:"city,omitempty"`
	CloudProvider string `json:"cloud_provider,omitempty"`
	CloudRegion   string `json:"cloud_region,omitempty"`
}

// CriticalityTier defines one tier of the criticality scale.
type CriticalityTier struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RTOHours    int    `json:"rto_hours,omitempty"`
	RPOHours    int    `json:"rpo_hours,omitempty"`
}

// BusinessService is one important business service.
type BusinessService struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	OwnerEmail      string `json:"owner_email,omitempty"`
	CriticalityTier int    `json:"criticality_tier,omitempty"`
}

// Exclusion records something deliberately left out of scope.
type Exclusion struct {
	Type      string `json:"type"`
	Item      string `json:"item"`
	Rationale string `json:"rationale,omitempty"`
}

// SectionScope is section D.
type SectionScope struct {
	InScopeLegalEntities      []LegalEntityScope  `json:"in_scope_legal_entities"`
	InScopeBusinessUnits      []BusinessUnitScope `json:"in_scope_business_units"`
	InScopeSystems            []SystemScope       `json:"in_scope_systems"`
	InScopeProcesses          []string            `json:"in_scope_processes"`
	InScopeEnvironments       []string            `json:"in_scope_environments"`
	InScopeLocations          []LocationScope     `json:"in_scope_locations"`
	CriticalityTiers          []CriticalityTier   `json:"criticality_tiers,omitempty"`
	ImportantBusinessServices []BusinessService   `json:"important_business_services,omitempty"`
	Exclusions                []Exclusion         `json:"exclusions,omitempty"`
}

func (s SectionScope) SectionCode() SectionCode { return SectionD }
func (s SectionScope) apply(g *Sections)        { g.Scope = &s }

// CrossBorderTransfer describes one cross-border data flow.
type CrossBorderTransfer struct {
	SourceCountry      string `json:"source_country"`
	DestinationCountry string `json:"destination_country"`
	DataType           string `json:"data_type,omitempty"`
	LegalBasis         string `json:"legal_basis,omitempty"`
}

// ThirdPartyProcessor describes one third party that handles tenant data.
type ThirdPartyProcessor struct {
	Vendor    string `json:"vendor"`
	DataType  string `json:"data_type,omitempty"`
	Location  string `json:"location,omitempty"`
	RiskLevel string `json:"risk_level,omitempty"`
}

// PaymentCardDetails captures the cardholder-data environment when payment
// card data is processed.
type PaymentCardDetails struct {
	MerchantLevel string   `json:"merchant_level,omitempty"`
	CardBrands    []string `json:"card_brands,omitempty"`
	StorageScope  string   `json:"storage_scope,omitempty"`
}

// SectionDataRisk is section E.
type SectionDataRisk struct {
	DataTypesProcessed       []string              `json:"data_types_processed"`
	HasPaymentCardData       bool                  `json:"has_payment_card_data,omitempty"`
	PaymentCardDetails       *PaymentCardDetails   `json:"payment_card_details,omitempty"`
	HasCrossBorderTransfers  bool                  `json:"has_cross_border_transfers,omitempty"`
	CrossBorderTransfers     []CrossBorderTransfer `json:"cross_border_transfers,omitempty"`
	CustomerVolumeTier       string                `json:"customer_volume_tier,omitempty"`
	TransactionVolumeTier    string                `json:"transaction_volume_tier,omitempty"`
	HasInternetFacingSystems bool                  `json:"has_internet_facing_systems,omitempty"`
	InternetFacingSystems    []string              `json:"internet_facing_systems,omitempty"`
	ThirdPartyProcessors     []ThirdPartyProcessor `json:"third_party_processors,omitempty"`
}

func (s SectionDataRisk) SectionCode() SectionCode { return SectionE }
func (s SectionDataRisk) apply(g *Sections)        { g.DataRisk = &s }

// SectionTechnology is section F.
type SectionTechnology struct {
	IdentityProvider        string   `json:"identity_provider"`
	SSOEnabled              bool     `json:"sso_enabled,omitempty"`
	SSOProtocol             string   `json:"sso_protocol,omitempty"`
	SCIMEnabled             bool     `json:"scim_enabled,omitempty"`
	ITSMPlatform            string   `json:"itsm_platform"`
	EvidenceRepository      string   `json:"evidence_repository,omitempty"`
	SIEMPlatform            string   `json:"siem_platform,omitempty"`
	VulnerabilityManagement string   `json:"vulnerability_management,omitempty"`
	EDRPlatform             string   `json:"edr_platform,omitempty"`
	CloudProviders          []string `json:"cloud_providers"`
	ERPPlatform             string   `json:"erp_platform,omitempty"`
	CMDBSource              string   `json:"cmdb_source,omitempty"`
	CICDTools               []string `json:"cicd_tools,omitempty"`
	BackupDRTooling         string   `json:"backup_dr_tooling,omitempty"`
}

func (s SectionTechnology) SectionCode() SectionCode { return SectionF }
func (s SectionTechnology) apply(g *Sections)        { g.Technology = &s }

// SectionOwnership is section G.
type SectionOwnership struct {
	OwnershipApproach        string   `json:"ownership_approach"`
	DefaultOwnerTeam         string   `json:"default_owner_team,omitempty"`
	ExceptionApproverRole    string   `json:"exception_approver_role,omitempty"`
	RegulatoryApproverRole   string   `json:"regulatory_approver_role,omitempty"`
	EffectivenessSignoffRole string   `json:"effectiveness_signoff_role,omitempty"`
	InternalAuditContact     string   `json:"internal_audit_contact,omitempty"`
	RiskCommitteeCadence     string   `json:"risk_committee_cadence,omitempty"`
	RiskCommitteeRoles       []string `json:"risk_committee_roles,omitempty"`
}

func (s SectionOwnership) SectionCode() SectionCode { return SectionG }
func (s SectionOwnership) apply(g *Sections)        { g.Ownership = &s }

// OrgAdmin is one organization administrator.
type OrgAdmin struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// TeamDefinition defines one team to create at go-live.
type TeamDefinition struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	Type             string `json:"type,omitempty"`
	OwnerEmail       string `json:"owner_email,omitempty"`
	BackupOwnerEmail string `json:"backup_owner_email,omitempty"`
}

// TeamMember assigns one person to a team.
type TeamMember struct {
	TeamCode string `json:"team_code"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	RoleCode string `json:"role_code,omitempty"`
}

// RACIMapping assigns RACI roles for one control family.
type RACIMapping struct {
	ControlFamily string `json:"control_family"`
	Responsible   string `json:"responsible,omitempty"`
	Accountable   string `json:"accountable,omitempty"`
	Consulted     string `json:"consulted,omitempty"`
	Informed      string `json:"informed,omitempty"`
}

// ApprovalGate configures one approval checkpoint.
type ApprovalGate struct {
	Name              string   `json:"name"`
	ScopeType         string   `json:"scope_type,omitempty"`
	Scope             string   `json:"scope,omitempty"`
	ApproverRoles     []string `json:"approver_roles,omitempty"`
	RequiredApprovals int      `json:"required_approvals,omitempty"`
}

// DelegationRule permits temporary delegation between roles.
type DelegationRule struct {
	FromRole         string `json:"from_role"`
	ToRole           string `json:"to_role"`
	MaxDays          int    `json:"max_days,omitempty"`
	RequiresApproval bool   `json:"requires_approval,omitempty"`
}

// SectionTeams is section H.
type SectionTeams struct {
	OrgAdmins            []OrgAdmin       `json:"org_admins"`
	CreateTeamsNow       bool             `json:"create_teams_now,omitempty"`
	Teams                []TeamDefinition `json:"teams,omitempty"`
	TeamMembers          []TeamMember     `json:"team_members,omitempty"`
	RoleCatalog          []string         `json:"role_catalog,omitempty"`
	RACIMappingNeeded    bool             `json:"raci_mapping_needed,omitempty"`
	RACIMappings         []RACIMapping    `json:"raci_mappings,omitempty"`
	ApprovalGatesNeeded  bool             `json:"approval_gates_needed,omitempty"`
	ApprovalGates        []ApprovalGate   `json:"approval_gates,omitempty"`
	DelegationRules      []DelegationRule `json:"delegation_rules,omitempty"`
	NotificationChannels []string         `json:"notification_channels"`
	EscalationAfterDays  int              `json:"escalation_after_days,omitempty"`
	EscalationTarget     string           `json:"escalation_target"`
}

func (s SectionTeams) SectionCode() SectionCode { return SectionH }
func (s SectionTeams) apply(g *Sections)        { g.Teams = &s }

// SectionCadence is section I.
type SectionCadence struct {
	EvidenceFrequencyByDomain    map[string]string `json:"evidence_frequency_by_domain,omitempty"`
	AccessReviewFrequency        string            `json:"access_review_frequency,omitempty"`
	VulnerabilityReviewFrequency string            `json:"vulnerability_review_frequency,omitempty"`
	BackupReviewFrequency        string            `json:"backup_review_frequency,omitempty"`
	RestoreTestCadence           string            `json:"restore_test_cadence,omitempty"`
	DRExerciseCadence            string            `json:"dr_exercise_cadence,omitempty"`
	IncidentTabletopCadence      string            `json:"incident_tabletop_cadence,omitempty"`
	EvidenceSubmitSLADays        int               `json:"evidence_submit_sla_days"`
	RemediationSLADays           map[string]int    `json:"remediation_sla_days"`
	ExceptionExpiryDays          int               `json:"exception_expiry_days,omitempty"`
	AuditRequestHandling         string            `json:"audit_request_handling,omitempty"`
}

func (s SectionCadence) SectionCode() SectionCode { return SectionI }
func (s SectionCadence) apply(g *Sections)        { g.Cadence = &s }

// EvidenceAccessRules restricts who may see, approve and upload evidence.
type EvidenceAccessRules struct {
	ViewerRoles   []string `json:"viewer_roles,omitempty"`
	ApproverRoles []string `json:"approver_roles,omitempty"`
	UploadRoles   []string `json:"upload_roles,omitempty"`
}

// SamplingGuidance sets evidence sampling policy.
type SamplingGuidance struct {
	UseSampling       bool   `json:"use_sampling,omitempty"`
	Method            string `json:"method,omitempty"`
	MinimumSampleSize int    `json:"minimum_sample_size,omitempty"`
}

// ConfidentialHandling sets handling rules for confidential evidence.
type ConfidentialHandling struct {
	RequireEncryption     bool     `json:"require_encryption,omitempty"`
	RestrictedAccessRoles []string `json:"restricted_access_roles,omitempty"`
}

// SectionEvidence is section J.
type SectionEvidence struct {
	NamingConventionRequired bool                  `json:"naming_convention_required,omitempty"`
	NamingPattern            string                `json:"naming_pattern,omitempty"`
	StorageLocationByDomain  map[string]string     `json:"storage_location_by_domain,omitempty"`
	RetentionPeriodYears     int                   `json:"retention_period_years"`
	AccessRules              *EvidenceAccessRules  `json:"access_rules,omitempty"`
	AcceptableEvidenceTypes  []string              `json:"acceptable_evidence_types,omitempty"`
	Sampling                 *SamplingGuidance     `json:"sampling,omitempty"`
	ConfidentialHandling     *ConfidentialHandling `json:"confidential_handling,omitempty"`
}

func (s SectionEvidence) SectionCode() SectionCode { return SectionJ }
func (s SectionEvidence) apply(g *Sections)        { g.Evidence = &s }

// OverlaySelections picks baseline overlays by dimension.
type OverlaySelections struct {
	Jurisdiction []string `json:"jurisdiction,omitempty"`
	Sector       []string `json:"sector,omitempty"`
	Data         []string `json:"data,omitempty"`
	Technology   []string `json:"technology,omitempty"`
}

// CustomControlRequirement is one tenant-specific control requirement.
type CustomControlRequirement struct {
	Code          string `json:"code"`
	Text          string `json:"text"`
	ControlFamily string `json:"control_family,omitempty"`
	Priority      string `json:"priority,omitempty"`
	Source        string `json:"source,omitempty"`
}

// SectionBaseline is section K.
type SectionBaseline struct {
	AdoptDefaultBaseline  bool                       `json:"adopt_default_baseline,omitempty"`
	DefaultBaselineCode   string                     `json:"default_baseline_code,omitempty"`
	Overlays              *OverlaySelections         `json:"overlays,omitempty"`
	HasCustomRequirements bool                       `json:"has_custom_requirements,omitempty"`
	CustomRequirements    []CustomControlRequirement `json:"custom_requirements,omitempty"`
}

func (s SectionBaseline) SectionCode() SectionCode { return SectionK }
func (s SectionBaseline) apply(g *Sections)        { g.Baseline = &s }

// SectionSuccessMetrics is section L.
type SectionSuccessMetrics struct {
	SuccessMetrics           []string       `json:"success_metrics"`
	AuditPrepHoursPerMonth   *float64       `json:"audit_prep_hours_per_month,omitempty"`
	RemediationClosureDays   *int           `json:"remediation_closure_days,omitempty"`
	OverdueControlsPerMonth  *int           `json:"overdue_controls_per_month,omitempty"`
	TargetImprovementPercent map[string]int `json:"target_improvement_percent,omitempty"`
	PilotDomains             []string       `json:"pilot_domains,omitempty"`
}

func (s SectionSuccessMetrics) SectionCode() SectionCode { return SectionL }
func (s SectionSuccessMetrics) apply(g *Sections)        { g.SuccessMetrics = &s }
