package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, CompanyTypeAgency.Valid())
	assert.False(t, CompanyType("PUBLISHER").Valid())
	assert.True(t, SeniorityCLevel.Valid())
	assert.False(t, Seniority("INTERN").Valid())
	assert.True(t, BudgetNone.Valid())
	assert.False(t, BudgetAuthority("UNLIMITED").Valid())
}

func TestFullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		first, last, want string
	}{
		{"Jane", "Doe", "Jane Doe"},
		{"Jane", "", "Jane"},
		{"", "Doe", "Doe"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			c := ContactCandidate{FirstName: tt.first, LastName: tt.last}
			assert.Equal(t, tt.want, c.FullName())
		})
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "acme corp", NormalizeName("  Acme Corp "))
	assert.Equal(t, NormalizeName("ACME"), NormalizeName("acme"))
}

func TestCountSeverity(t *testing.T) {
	t.Parallel()

	errs := []ImportError{
		NewError(1, "name", "", "required"),
		NewWarning(2, "title", "Chef", "low relevance"),
		NewError(3, "email", "x", "invalid"),
	}
	e, w := CountSeverity(errs)
	assert.Equal(t, 2, e)
	assert.Equal(t, 1, w)
	assert.True(t, errs[0].IsError())
	assert.False(t, errs[1].IsError())
}
