// Package domain holds shared identifier types used across modules.
//
// IDs are distinct types over uuid.UUID so a TenantID cannot be passed where
// a WizardID is expected. Parse functions enforce the trust-boundary
// invariant: IDs must be valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "grcadmin/pkg/domain-errors"
)

// TenantID identifies a tenant organization.
type TenantID uuid.UUID

// WizardID identifies an onboarding wizard aggregate.
type WizardID uuid.UUID

// NewWizardID generates a fresh wizard identifier.
func NewWizardID() WizardID { return WizardID(uuid.New()) }

func (id TenantID) String() string { return uuid.UUID(id).String() }
func (id WizardID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id TenantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// IsNil reports whether the ID is the zero UUID.
func (id WizardID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the ID in canonical UUID form for JSON and logs.
func (id TenantID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses the canonical UUID form.
func (id *TenantID) UnmarshalText(text []byte) error {
	parsed, err := ParseTenantID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText renders the ID in canonical UUID form for JSON and logs.
func (id WizardID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses the canonical UUID form.
func (id *WizardID) UnmarshalText(text []byte) error {
	parsed, err := ParseWizardID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseTenantID parses and validates a tenant ID from its string form.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(u), nil
}

// ParseWizardID parses and validates a wizard ID from its string form.
func ParseWizardID(s string) (WizardID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return WizardID{}, err
	}
	return WizardID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
