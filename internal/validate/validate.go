// Package validate checks import candidates field by field and across the
// whole batch. Validators never fail: every finding is returned as an
// ImportError so the caller can render one complete report.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/normalize"
	"github.com/sells-group/media-import/internal/role"
)

const (
	// DefaultRelevanceThreshold is the media-role relevance below which a title draws a warning.
	DefaultRelevanceThreshold = 30

	minEmployees = 1
	maxEmployees = 10_000_000
	minPhone     = 10
	maxPhone     = 15
)

var (
	domainPattern   = regexp.MustCompile(`(?i)^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	revenuePattern  = regexp.MustCompile(`^\$(\d{1,3}(,\d{3})*|\d+(\.\d+)?[KMB])$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	linkedInPattern = regexp.MustCompile(`(?i)^https?://(www\.)?linkedin\.com/(in|pub|profile)/[^/\s?#]+/?$`)
)

// Validator applies the batch rules. It is safe for concurrent use.
type Validator struct {
	engine             *role.Engine
	relevanceThreshold float64
}

// Option configures a Validator.
type Option func(*Validator)

// WithRelevanceThreshold overrides DefaultRelevanceThreshold.
func WithRelevanceThreshold(t float64) Option {
	return func(v *Validator) { v.relevanceThreshold = t }
}

// New creates a Validator. A nil engine uses role.Default().
func New(engine *role.Engine, opts ...Option) *Validator {
	if engine == nil {
		engine = role.Default()
	}
	v := &Validator{engine: engine, relevanceThreshold: DefaultRelevanceThreshold}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New(nil)

// ValidateCompanies runs the company rules with default settings.
func ValidateCompanies(companies []model.CompanyCandidate) []model.ImportError {
	return defaultValidator.Companies(companies)
}

// ValidateContacts runs the contact rules with default settings.
func ValidateContacts(contacts []model.ContactCandidate) []model.ImportError {
	return defaultValidator.Contacts(contacts)
}

// ValidateDataRelationships runs the relationship rule.
func ValidateDataRelationships(companies []model.CompanyCandidate, contacts []model.ContactCandidate) []model.ImportError {
	return defaultValidator.Relationships(companies, contacts)
}

// All runs company, contact, and relationship rules over a parse result.
func (v *Validator) All(data *model.ParsedData) []model.ImportError {
	errs := v.Companies(data.Companies)
	errs = append(errs, v.Contacts(data.Contacts)...)
	errs = append(errs, v.Relationships(data.Companies, data.Contacts)...)
	return errs
}

// Companies checks required fields, formats, and batch uniqueness of name and domain.
// Later duplicates are reported; the first occurrence is not.
func (v *Validator) Companies(companies []model.CompanyCandidate) []model.ImportError {
	errs := []model.ImportError{}
	names := make(map[string]int)
	domains := make(map[string]int)

	for i, c := range companies {
		row := rowOf(c.SourceRow, i)

		name := model.NormalizeName(c.Name)
		if name == "" {
			errs = append(errs, model.NewError(row, "name", c.Name, "company name is required"))
		} else if first, dup := names[name]; dup {
			errs = append(errs, model.NewError(row, "name", c.Name,
				fmt.Sprintf("duplicate company name (first seen on row %d)", first)))
		} else {
			names[name] = row
		}

		if d := strings.TrimSpace(c.Domain); d != "" {
			key := strings.ToLower(d)
			if !domainPattern.MatchString(d) {
				errs = append(errs, model.NewError(row, "domain", c.Domain, "invalid domain format"))
			} else if first, dup := domains[key]; dup {
				errs = append(errs, model.NewError(row, "domain", c.Domain,
					fmt.Sprintf("duplicate domain (first seen on row %d)", first)))
			} else {
				domains[key] = row
			}
		}

		if c.EmployeeCount != nil && (*c.EmployeeCount < minEmployees || *c.EmployeeCount > maxEmployees) {
			errs = append(errs, model.NewError(row, "employeeCount", strconv.Itoa(*c.EmployeeCount),
				fmt.Sprintf("employee count must be between %d and %d", minEmployees, maxEmployees)))
		}

		if w := strings.TrimSpace(c.Website); w != "" && !isAbsoluteURL(w) {
			errs = append(errs, model.NewError(row, "website", c.Website, "website must be an absolute URL"))
		}

		if c.Type != "" && !c.Type.Valid() {
			errs = append(errs, model.NewError(row, "type", string(c.Type), "company type must be BRAND, AGENCY, or VENDOR"))
		}

		if r := strings.TrimSpace(c.Revenue); r != "" && !revenuePattern.MatchString(r) {
			errs = append(errs, model.NewError(row, "revenue", c.Revenue, `revenue must be a comma-grouped amount like "$1,500,000" or a K/M/B figure like "$2.5M"`))
		}
	}
	return errs
}

// Contacts checks required fields, formats, email uniqueness, and media-role relevance.
func (v *Validator) Contacts(contacts []model.ContactCandidate) []model.ImportError {
	errs := []model.ImportError{}
	emails := make(map[string]int)

	for i, c := range contacts {
		row := rowOf(c.SourceRow, i)

		if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
			errs = append(errs, model.NewError(row, "name", "", "first or last name is required"))
		}
		if strings.TrimSpace(c.CompanyName) == "" {
			errs = append(errs, model.NewError(row, "companyName", c.CompanyName, "company name is required"))
		}

		title := strings.TrimSpace(c.Title)
		if title == "" {
			errs = append(errs, model.NewError(row, "title", c.Title, "title is required for role inference"))
		}

		if e := strings.TrimSpace(c.Email); e != "" {
			key := strings.ToLower(e)
			if !emailPattern.MatchString(e) {
				errs = append(errs, model.NewError(row, "email", c.Email, "invalid email format"))
			} else if first, dup := emails[key]; dup {
				errs = append(errs, model.NewError(row, "email", c.Email,
					fmt.Sprintf("duplicate email (first seen on row %d)", first)))
			} else {
				emails[key] = row
			}
		}

		if p := strings.TrimSpace(c.Phone); p != "" {
			if n := len(normalize.Digits(p)); n < minPhone || n > maxPhone {
				errs = append(errs, model.NewError(row, "phone", c.Phone,
					fmt.Sprintf("phone must have %d-%d digits", minPhone, maxPhone)))
			}
		}

		if l := strings.TrimSpace(c.LinkedInURL); l != "" && !linkedInPattern.MatchString(l) {
			errs = append(errs, model.NewError(row, "linkedinUrl", c.LinkedInURL, "invalid LinkedIn profile URL"))
		}

		if c.Seniority != "" && !c.Seniority.Valid() {
			errs = append(errs, model.NewError(row, "seniority", string(c.Seniority), "unknown seniority level"))
		}
		if c.BudgetAuthority != "" && !c.BudgetAuthority.Valid() {
			errs = append(errs, model.NewError(row, "budgetAuthority", string(c.BudgetAuthority), "unknown budget authority"))
		}

		if title != "" {
			if score := v.engine.Relevance(title); score < v.relevanceThreshold {
				errs = append(errs, model.NewWarning(row, "title", c.Title,
					fmt.Sprintf("title may not be a target media role (relevance %.0f/100)", score)))
			}
		}
	}
	return errs
}

// Relationships warns for every contact whose company is not among the
// batch's companies. Contacts without a company name are left to Contacts.
func (v *Validator) Relationships(companies []model.CompanyCandidate, contacts []model.ContactCandidate) []model.ImportError {
	errs := []model.ImportError{}
	known := make(map[string]bool, len(companies))
	for _, c := range companies {
		if n := model.NormalizeName(c.Name); n != "" {
			known[n] = true
		}
	}

	for i, c := range contacts {
		name := model.NormalizeName(c.CompanyName)
		if name == "" || known[name] {
			continue
		}
		errs = append(errs, model.NewWarning(rowOf(c.SourceRow, i), "companyName", c.CompanyName,
			"company not found in this import; it must already exist or be created separately"))
	}
	return errs
}

func rowOf(sourceRow, index int) int {
	if sourceRow > 0 {
		return sourceRow
	}
	return index + 1
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
