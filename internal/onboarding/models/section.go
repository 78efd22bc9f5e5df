// Package models holds the onboarding wizard aggregate and its section
// payloads.
package models

import (
	dErrors "grcadmin/pkg/domain-errors"
)

// SectionCode identifies one of the twelve questionnaire sections, A through L.
type SectionCode string

const (
	SectionA SectionCode = "A"
	SectionB SectionCode = "B"
	SectionC SectionCode = "C"
	SectionD SectionCode = "D"
	SectionE SectionCode = "E"
	SectionF SectionCode = "F"
	SectionG SectionCode = "G"
	SectionH SectionCode = "H"
	SectionI SectionCode = "I"
	SectionJ SectionCode = "J"
	SectionK SectionCode = "K"
	SectionL SectionCode = "L"
)

// SectionOrder is the canonical step order of the wizard.
var SectionOrder = []SectionCode{
	SectionA, SectionB, SectionC, SectionD, SectionE, SectionF,
	SectionG, SectionH, SectionI, SectionJ, SectionK, SectionL,
}

// TotalSteps is the number of wizard steps.
const TotalSteps = 12

var sectionNames = map[SectionCode]string{
	SectionA: "Organization Identity",
	SectionB: "Assurance Goals",
	SectionC: "Regulatory Profile",
	SectionD: "Scope Definition",
	SectionE: "Data & Risk Profile",
	SectionF: "Technology Landscape",
	SectionG: "Ownership & Accountability",
	SectionH: "Teams & Roles",
	SectionI: "Cadence & SLAs",
	SectionJ: "Evidence Standards",
	SectionK: "Control Baseline",
	SectionL: "Success Metrics",
}

// requiredSections are the sections that must be complete before the wizard
// may be completed. The remaining six can be filled in after go-live.
var requiredSections = map[SectionCode]struct{}{
	SectionA: {}, SectionD: {}, SectionE: {},
	SectionF: {}, SectionH: {}, SectionI: {},
}

// ParseSectionCode validates a caller-supplied section code.
func ParseSectionCode(raw string) (SectionCode, error) {
	code := SectionCode(raw)
	if _, ok := sectionNames[code]; !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown section code %q", raw)
	}
	return code, nil
}

// Name returns the display name of the section.
func (c SectionCode) Name() string {
	return sectionNames[c]
}

// Required reports whether the section gates wizard completion.
func (c SectionCode) Required() bool {
	_, ok := requiredSections[c]
	return ok
}

// Ordinal returns the 1-based step number of the section, or 0 for an unknown
// code.
func (c SectionCode) Ordinal() int {
	for i, s := range SectionOrder {
		if s == c {
			return i + 1
		}
	}
	return 0
}
