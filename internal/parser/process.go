package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/fieldmap"
	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/normalize"
)

// ProcessRawData maps every row onto candidates. Companies are coalesced by
// normalized name with the first occurrence winning; later rows for the same
// company add nothing and are not reported. A row that fails becomes an
// error-severity ImportError on field "general" and processing continues.
// headers fixes the column priority for the mapper; nil means sorted keys.
func (p *Parser) ProcessRawData(headers []string, rows []model.RawRow) *model.ParsedData {
	out := &model.ParsedData{
		Companies: []model.CompanyCandidate{},
		Contacts:  []model.ContactCandidate{},
		Errors:    []model.ImportError{},
		Preview:   preview(rows, p.previewRows),
	}

	companyIndex := make(map[string]bool)
	for i, row := range rows {
		rowNum := i + 1
		company, contact, issues, err := p.processRow(rowNum, row, headers)
		if err != nil {
			out.Errors = append(out.Errors, model.NewError(rowNum, "general", rawRowString(row), err.Error()))
			continue
		}
		out.Errors = append(out.Errors, issues...)

		if company != nil {
			key := model.NormalizeName(company.Name)
			if !companyIndex[key] {
				companyIndex[key] = true
				out.Companies = append(out.Companies, *company)
			}
		}
		if contact != nil {
			out.Contacts = append(out.Contacts, *contact)
		}
	}

	zap.L().Debug("parser: processed rows",
		zap.Int("rows", len(rows)),
		zap.Int("companies", len(out.Companies)),
		zap.Int("contacts", len(out.Contacts)),
		zap.Int("row_errors", len(out.Errors)),
	)
	return out
}

// processRow converts one row. Field-level problems come back as issues
// alongside the candidates; panics from malformed input are returned as errors.
func (p *Parser) processRow(rowNum int, row model.RawRow, headers []string) (company *model.CompanyCandidate, contact *model.ContactCandidate, issues []model.ImportError, err error) {
	defer func() {
		if r := recover(); r != nil {
			company, contact, issues = nil, nil, nil
			err = eris.Errorf("parser: row %d: %v", rowNum, r)
		}
	}()

	if row == nil {
		return nil, nil, nil, eris.Errorf("parser: row %d: not an object", rowNum)
	}

	mapping := p.mapper.Map(orderedKeys(row, headers))
	get := func(f fieldmap.Field) string { return stringify(mapping.Value(row, f)) }

	companyName := get(fieldmap.CompanyName)
	if companyName != "" {
		var issue *model.ImportError
		company, issue = p.buildCompany(rowNum, row, mapping, companyName)
		if issue != nil {
			issues = append(issues, *issue)
		}
	}

	if get(fieldmap.FirstName) != "" || get(fieldmap.LastName) != "" {
		contact = p.buildContact(rowNum, row, mapping, companyName)
	}
	return company, contact, issues, nil
}

// buildCompany returns an issue when the employee count cannot be read. The
// company is still built, without a count.
func (p *Parser) buildCompany(rowNum int, row model.RawRow, mapping fieldmap.Mapping, name string) (*model.CompanyCandidate, *model.ImportError) {
	get := func(f fieldmap.Field) string { return stringify(mapping.Value(row, f)) }

	var issue *model.ImportError
	count, err := employeeCount(mapping.Value(row, fieldmap.EmployeeCount))
	if err != nil {
		e := model.NewError(rowNum, string(fieldmap.EmployeeCount), get(fieldmap.EmployeeCount), err.Error())
		issue = &e
	}

	c := &model.CompanyCandidate{
		Name:          name,
		Industry:      get(fieldmap.Industry),
		EmployeeCount: count,
		Revenue:       get(fieldmap.Revenue),
		Headquarters:  get(fieldmap.Headquarters),
		Description:   get(fieldmap.Description),
		Website:       get(fieldmap.Website),
		SourceRow:     rowNum,
	}

	if d := get(fieldmap.Domain); d != "" {
		c.Domain = normalize.Domain(d)
	} else {
		c.Domain = InferDomain(name)
	}

	if t := enumValue(mapping.Value(row, fieldmap.CompanyType)); t != "" {
		c.Type = model.CompanyType(t)
	} else {
		c.Type = InferCompanyType(name, c.Industry)
	}
	return c, issue
}

func (p *Parser) buildContact(rowNum int, row model.RawRow, mapping fieldmap.Mapping, companyName string) *model.ContactCandidate {
	get := func(f fieldmap.Field) string { return stringify(mapping.Value(row, f)) }

	title := get(fieldmap.Title)
	profile := p.engine.Infer(title)

	c := &model.ContactCandidate{
		FirstName:       get(fieldmap.FirstName),
		LastName:        get(fieldmap.LastName),
		Email:           get(fieldmap.Email),
		Phone:           get(fieldmap.Phone),
		Title:           title,
		Department:      get(fieldmap.Department),
		LinkedInURL:     get(fieldmap.LinkedInURL),
		CompanyName:     companyName,
		Seniority:       profile.Seniority,
		Specializations: profile.Specializations,
		BudgetAuthority: profile.BudgetAuthority,
		DecisionMaking:  profile.DecisionMaking,
		Territories:     stringList(mapping.Value(row, fieldmap.Territories)),
		SourceRow:       rowNum,
	}

	if s := enumValue(mapping.Value(row, fieldmap.Seniority)); s != "" {
		c.Seniority = model.Seniority(s)
	}
	if b := enumValue(mapping.Value(row, fieldmap.BudgetAuthority)); b != "" {
		c.BudgetAuthority = model.BudgetAuthority(b)
	}
	if specs := stringList(mapping.Value(row, fieldmap.Specializations)); len(specs) > 0 {
		c.Specializations = specs
	}
	return c
}

// InferDomain guesses "<alphanumeric name>.com". The result is a placeholder,
// not a verified domain; names with no letters or digits yield "".
func InferDomain(name string) string {
	base := normalize.Alnum(name)
	if base == "" {
		return ""
	}
	return base + ".com"
}

// InferCompanyType classifies by keywords in the name and industry.
func InferCompanyType(name, industry string) model.CompanyType {
	n := strings.ToLower(name)
	ind := strings.ToLower(industry)

	switch {
	case containsAny(n, "agency", "media", "advertising") || containsAny(ind, "advertising", "marketing"):
		return model.CompanyTypeAgency
	case containsAny(n, "tech", "software", "platform") || containsAny(ind, "technology", "software"):
		return model.CompanyTypeVendor
	default:
		return model.CompanyTypeBrand
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func preview(rows []model.RawRow, n int) []model.RawRow {
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]model.RawRow, n)
	copy(out, rows[:n])
	return out
}

func rawRowString(row model.RawRow) string {
	b, err := json.Marshal(row)
	if err != nil {
		return fmt.Sprint(row)
	}
	return string(b)
}
