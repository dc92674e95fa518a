package importer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/company"
	"github.com/sells-group/media-import/internal/model"
)

// EnrichedContact is one row of a contact-only import, resolved against the
// caller's existing companies.
type EnrichedContact struct {
	Row                int                    `json:"row"`
	Contact            model.ContactCandidate `json:"contact"`
	CompanyMatch       company.MatchKind      `json:"company_match"`
	CompanyMatchedName string                 `json:"company_matched_name,omitempty"`
	CompanyID          string                 `json:"company_id,omitempty"`
	IsValid            bool                   `json:"is_valid"`
	Errors             []string               `json:"errors"`
	Warnings           []string               `json:"warnings"`
}

// ContactSummary counts a contact-only import. Warnings counts rows with at
// least one warning.
type ContactSummary struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Invalid  int `json:"invalid"`
	Warnings int `json:"warnings"`
}

// ContactsResult is the report of a contact-only import.
type ContactsResult struct {
	FileName string            `json:"file_name"`
	Contacts []EnrichedContact `json:"contacts"`
	Summary  ContactSummary    `json:"summary"`
}

// ImportContactsCSV runs the contact-only flow over CSV bytes.
func (p *Pipeline) ImportContactsCSV(data []byte, existing []model.ExistingCompany) (*ContactsResult, error) {
	return p.ImportContacts(data, "contacts.csv", existing)
}

// ImportContacts parses a contact-only file, validates every row, and matches
// each company name against existing. An unmatched company is a warning: the
// caller may create it out of band.
func (p *Pipeline) ImportContacts(data []byte, fileName string, existing []model.ExistingCompany) (*ContactsResult, error) {
	rows, err := p.parser.ParseContacts(data, fileName)
	if err != nil {
		return nil, err
	}

	contacts := make([]model.ContactCandidate, 0, len(rows))
	for _, r := range rows {
		if r.Contact != nil {
			contacts = append(contacts, *r.Contact)
		}
	}

	byRow := make(map[int][]model.ImportError)
	for _, e := range p.validator.Contacts(contacts) {
		byRow[e.Row] = append(byRow[e.Row], e)
	}

	matcher := company.NewMatcher(existing)
	out := &ContactsResult{
		FileName: fileName,
		Contacts: make([]EnrichedContact, 0, len(rows)),
	}

	for _, r := range rows {
		ec := EnrichedContact{
			Row:          r.Row,
			CompanyMatch: company.MatchNone,
			Errors:       []string{},
			Warnings:     []string{},
		}
		if r.Err != nil {
			ec.Errors = append(ec.Errors, r.Err.Message)
			out.add(ec)
			continue
		}

		ec.Contact = *r.Contact
		for _, e := range byRow[r.Row] {
			if e.IsError() {
				ec.Errors = append(ec.Errors, describe(e))
			} else {
				ec.Warnings = append(ec.Warnings, describe(e))
			}
		}

		if r.Contact.CompanyName != "" {
			m := matcher.Find(r.Contact.CompanyName)
			ec.CompanyMatch = m.Kind
			switch m.Kind {
			case company.MatchExact, company.MatchFuzzy:
				ec.CompanyMatchedName = m.Company.Name
				ec.CompanyID = m.Company.ID
				if m.Kind == company.MatchFuzzy {
					ec.Warnings = append(ec.Warnings,
						fmt.Sprintf("company %q fuzzily matched to %q", r.Contact.CompanyName, m.Company.Name))
				}
			default:
				ec.Warnings = append(ec.Warnings,
					fmt.Sprintf("company %q not found; it will need to be created", r.Contact.CompanyName))
			}
		}
		out.add(ec)
	}

	zap.L().Info("importer: contact import evaluated",
		zap.String("file", fileName),
		zap.Int("total", out.Summary.Total),
		zap.Int("valid", out.Summary.Valid),
		zap.Int("invalid", out.Summary.Invalid),
		zap.Int("warnings", out.Summary.Warnings),
		zap.Int("existing_companies", matcher.Len()),
	)
	return out, nil
}

func (r *ContactsResult) add(ec EnrichedContact) {
	ec.IsValid = len(ec.Errors) == 0
	r.Contacts = append(r.Contacts, ec)
	r.Summary.Total++
	if ec.IsValid {
		r.Summary.Valid++
	} else {
		r.Summary.Invalid++
	}
	if len(ec.Warnings) > 0 {
		r.Summary.Warnings++
	}
}

func describe(e model.ImportError) string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
