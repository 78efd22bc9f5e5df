package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	dErrors "grcadmin/pkg/domain-errors"
)

func TestParseTenantID(t *testing.T) {
	valid := uuid.NewString()

	id, err := ParseTenantID(valid)
	assert.NoError(t, err)
	assert.Equal(t, valid, id.String())
	assert.False(t, id.IsNil())

	for name, input := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-uuid",
		"nil uuid": "00000000-0000-0000-0000-000000000000",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTenantID(input)
			assert.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestWizardIDRoundTrip(t *testing.T) {
	id := NewWizardID()

	text, err := id.MarshalText()
	assert.NoError(t, err)

	var parsed WizardID
	assert.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, id, parsed)
}
