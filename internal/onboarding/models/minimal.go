package models

// MinimalOnboarding is the fast-path payload covering only the six
// completion-gating sections. It exists for tenants who want to reach
// go-live with the smallest possible questionnaire and backfill the rest
// later.
type MinimalOnboarding struct {
	OrgIdentity SectionOrgIdentity `json:"org_identity"`
	Scope       SectionScope       `json:"scope"`
	DataRisk    SectionDataRisk    `json:"data_risk"`
	Technology  SectionTechnology  `json:"technology"`
	Teams       SectionTeams       `json:"teams"`
	Cadence     SectionCadence     `json:"cadence"`
}

// SectionUpdates expands the payload into the six section saves it stands
// for, in step order.
func (m MinimalOnboarding) SectionUpdates() []SectionUpdate {
	return []SectionUpdate{
		m.OrgIdentity,
		m.Scope,
		m.DataRisk,
		m.Technology,
		m.Teams,
		m.Cadence,
	}
}
