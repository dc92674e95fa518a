// Package fieldmap resolves arbitrary source column headers onto the canonical import schema.
package fieldmap

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Field is a canonical field name.
type Field string

const (
	FirstName       Field = "firstName"
	LastName        Field = "lastName"
	Email           Field = "email"
	Phone           Field = "phone"
	Title           Field = "title"
	CompanyName     Field = "companyName"
	Domain          Field = "domain"
	Industry        Field = "industry"
	EmployeeCount   Field = "employeeCount"
	Revenue         Field = "revenue"
	Headquarters    Field = "headquarters"
	LinkedInURL     Field = "linkedinUrl"
	Department      Field = "department"
	Territories     Field = "territories"
	Website         Field = "website"
	Description     Field = "description"
	CompanyType     Field = "companyType"
	Seniority       Field = "seniority"
	BudgetAuthority Field = "budgetAuthority"
	Specializations Field = "specializations"
)

// FieldAliases lists the known headers for one canonical field, in priority order.
type FieldAliases struct {
	Field   Field    `yaml:"field"`
	Aliases []string `yaml:"aliases"`
}

// Aliases is the full alias table. Order matters only for reporting.
type Aliases []FieldAliases

// DefaultAliases returns the built-in alias table.
func DefaultAliases() Aliases {
	return Aliases{
		{FirstName, []string{"first_name", "firstname", "first", "fname", "given_name"}},
		{LastName, []string{"last_name", "lastname", "last", "lname", "surname", "family_name"}},
		{Email, []string{"email", "email_address", "e-mail", "mail", "work_email"}},
		{Phone, []string{"phone", "phone_number", "telephone", "tel", "mobile", "direct_phone"}},
		{Title, []string{"title", "job_title", "position", "role"}},
		{CompanyName, []string{"company_name", "company", "organization", "org", "employer", "account_name"}},
		{Domain, []string{"domain", "company_domain", "email_domain"}},
		{Industry, []string{"industry", "sector", "vertical"}},
		{EmployeeCount, []string{"employee_count", "employees", "headcount", "company_size", "size"}},
		{Revenue, []string{"revenue", "annual_revenue", "company_revenue"}},
		{Headquarters, []string{"headquarters", "hq", "location", "company_location"}},
		{LinkedInURL, []string{"linkedin_url", "linkedin", "linkedin_profile"}},
		{Department, []string{"department", "dept", "team", "function"}},
		{Territories, []string{"territories", "territory", "regions", "region", "markets"}},
		{Website, []string{"website", "url", "company_website", "homepage"}},
		{Description, []string{"description", "about", "company_description"}},
		{CompanyType, []string{"company_type", "type", "category"}},
		{Seniority, []string{"seniority", "seniority_level", "level"}},
		{BudgetAuthority, []string{"budget_authority", "budget"}},
		{Specializations, []string{"specializations", "specialization", "specialties"}},
	}
}

// LoadAliases reads an alias table from YAML and merges it over the defaults.
// A field present in the file replaces that field's default aliases; unknown
// fields are appended.
func LoadAliases(path string) (Aliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fieldmap: read aliases %s", path)
	}

	var wrapper struct {
		Fields Aliases `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "fieldmap: parse aliases")
	}

	merged := DefaultAliases()
	for _, fa := range wrapper.Fields {
		if fa.Field == "" {
			return nil, eris.New("fieldmap: alias entry without field")
		}
		replaced := false
		for i := range merged {
			if merged[i].Field == fa.Field {
				merged[i].Aliases = fa.Aliases
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, fa)
		}
	}
	return merged, nil
}

// Mapper resolves header sets against an alias table.
type Mapper struct {
	fields []compiledField
}

type compiledField struct {
	field   Field
	aliases []string // normalized
}

// NewMapper normalizes the alias table once.
func NewMapper(aliases Aliases) *Mapper {
	m := &Mapper{fields: make([]compiledField, 0, len(aliases))}
	for _, fa := range aliases {
		cf := compiledField{field: fa.Field}
		for _, a := range fa.Aliases {
			if n := Normalize(a); n != "" {
				cf.aliases = append(cf.aliases, n)
			}
		}
		m.fields = append(m.fields, cf)
	}
	return m
}

// Default returns a Mapper over DefaultAliases.
func Default() *Mapper {
	return NewMapper(DefaultAliases())
}

// Map returns canonical field -> source header for every field that resolves.
// Aliases are tried in priority order and, for each alias, headers in the
// given order; the first hit wins. Unresolved fields are absent.
func (m *Mapper) Map(headers []string) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	out := make(Mapping, len(m.fields))
	for _, cf := range m.fields {
	aliases:
		for _, alias := range cf.aliases {
			for i, nh := range normalized {
				if nh == alias {
					out[cf.field] = headers[i]
					break aliases
				}
			}
		}
	}
	return out
}

// Normalize lower-cases a header and strips whitespace, underscores, and hyphens.
func Normalize(header string) string {
	var b strings.Builder
	b.Grow(len(header))
	for _, r := range strings.ToLower(header) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
