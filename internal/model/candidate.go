// Package model defines the value types that flow through the import pipeline.
package model

import "strings"

// CompanyType classifies a company's role in the media market.
type CompanyType string

const (
	CompanyTypeBrand  CompanyType = "BRAND"
	CompanyTypeAgency CompanyType = "AGENCY"
	CompanyTypeVendor CompanyType = "VENDOR"
)

// Valid reports whether t is one of the known company types.
func (t CompanyType) Valid() bool {
	switch t {
	case CompanyTypeBrand, CompanyTypeAgency, CompanyTypeVendor:
		return true
	}
	return false
}

// Seniority is the inferred or declared level of a contact.
type Seniority string

const (
	SeniorityCLevel      Seniority = "C_LEVEL"
	SeniorityVP          Seniority = "VP"
	SeniorityDirector    Seniority = "DIRECTOR"
	SeniorityManager     Seniority = "MANAGER"
	SeniorityAssociate   Seniority = "ASSOCIATE"
	SeniorityCoordinator Seniority = "COORDINATOR"
)

// Valid reports whether s is one of the known seniority levels.
func (s Seniority) Valid() bool {
	switch s {
	case SeniorityCLevel, SeniorityVP, SeniorityDirector,
		SeniorityManager, SeniorityAssociate, SeniorityCoordinator:
		return true
	}
	return false
}

// BudgetAuthority describes how much spend a contact controls.
type BudgetAuthority string

const (
	BudgetHigh   BudgetAuthority = "HIGH"
	BudgetMedium BudgetAuthority = "MEDIUM"
	BudgetLow    BudgetAuthority = "LOW"
	BudgetNone   BudgetAuthority = "NONE"
)

// Valid reports whether b is one of the known budget authority levels.
func (b BudgetAuthority) Valid() bool {
	switch b {
	case BudgetHigh, BudgetMedium, BudgetLow, BudgetNone:
		return true
	}
	return false
}

// RawRow is one untyped input record keyed by the source column header.
// Values are string, int64, float64, bool, nil, or (JSON only) []any / map[string]any.
type RawRow map[string]any

// CompanyCandidate is a parsed company awaiting validation.
type CompanyCandidate struct {
	Name          string      `json:"name"`
	Domain        string      `json:"domain,omitempty"`
	Industry      string      `json:"industry,omitempty"`
	EmployeeCount *int        `json:"employee_count,omitempty"`
	Revenue       string      `json:"revenue,omitempty"`
	Headquarters  string      `json:"headquarters,omitempty"`
	Description   string      `json:"description,omitempty"`
	Website       string      `json:"website,omitempty"`
	Type          CompanyType `json:"type,omitempty"`

	// SourceRow is the 1-based data row the candidate was first seen on.
	SourceRow int `json:"source_row,omitempty"`
}

// ContactCandidate is a parsed contact awaiting validation.
type ContactCandidate struct {
	FirstName       string          `json:"first_name,omitempty"`
	LastName        string          `json:"last_name,omitempty"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Title           string          `json:"title"`
	Department      string          `json:"department,omitempty"`
	LinkedInURL     string          `json:"linkedin_url,omitempty"`
	CompanyName     string          `json:"company_name"`
	Seniority       Seniority       `json:"seniority,omitempty"`
	Specializations []string        `json:"specializations"`
	BudgetAuthority BudgetAuthority `json:"budget_authority,omitempty"`
	DecisionMaking  bool            `json:"decision_making"`
	Territories     []string        `json:"territories,omitempty"`

	SourceRow int `json:"source_row,omitempty"`
}

// FullName joins the non-empty name parts.
func (c ContactCandidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NormalizeName is the identity key for company names: trimmed and lower-cased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
