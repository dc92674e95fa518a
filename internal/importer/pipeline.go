// Package importer runs the bulk-import pipeline: parse, validate, score, report.
// It never persists anything; callers store the valid subset themselves.
package importer

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/parser"
	"github.com/sells-group/media-import/internal/scorer"
	"github.com/sells-group/media-import/internal/validate"
)

// Pipeline wires the pipeline stages. It is safe for concurrent use.
type Pipeline struct {
	parser    *parser.Parser
	validator *validate.Validator
	scorer    *scorer.Scorer
}

// New creates a Pipeline. Nil stages fall back to their defaults.
func New(p *parser.Parser, v *validate.Validator, s *scorer.Scorer) *Pipeline {
	if p == nil {
		p = parser.New(nil, nil)
	}
	if v == nil {
		v = validate.New(nil)
	}
	if s == nil {
		s = scorer.New(nil, scorer.DefaultWeights())
	}
	return &Pipeline{parser: p, validator: v, scorer: s}
}

// Summary counts one import.
type Summary struct {
	Companies      int `json:"companies"`
	Contacts       int `json:"contacts"`
	ValidCompanies int `json:"valid_companies"`
	ValidContacts  int `json:"valid_contacts"`
	Errors         int `json:"errors"`
	Warnings       int `json:"warnings"`
}

// ContactQuality is the quality score of the contact at Row.
type ContactQuality struct {
	Row  int    `json:"row"`
	Name string `json:"name"`
	scorer.QualityScore
}

// Result is the report of one file.
type Result struct {
	FileName string            `json:"file_name"`
	Data     *model.ParsedData `json:"data"`
	// Issues holds row-processing errors followed by validation findings, ordered by row.
	Issues []model.ImportError `json:"issues"`
	// Quality lists every contact best first; equal scores keep file order.
	Quality []ContactQuality `json:"quality"`
	Summary Summary          `json:"summary"`

	badCompanies map[int]bool
	badContacts  map[int]bool
}

// Run parses data and validates and scores every candidate. Only an
// unsupported or unreadable file is returned as an error.
func (p *Pipeline) Run(data []byte, fileName string) (*Result, error) {
	parsed, err := p.parser.ParseFile(data, fileName)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(fileName, parsed), nil
}

// Evaluate validates and scores already-parsed candidates.
func (p *Pipeline) Evaluate(fileName string, parsed *model.ParsedData) *Result {
	companyIssues := p.validator.Companies(parsed.Companies)
	contactIssues := p.validator.Contacts(parsed.Contacts)
	relationIssues := p.validator.Relationships(parsed.Companies, parsed.Contacts)

	r := &Result{
		FileName:     fileName,
		Data:         parsed,
		Quality:      make([]ContactQuality, 0, len(parsed.Contacts)),
		badCompanies: errorRows(companyIssues),
		badContacts:  errorRows(contactIssues),
	}
	// Rows that failed outright have no candidates; the rest carry company
	// field errors such as an unreadable employee count.
	for row := range errorRows(parsed.Errors) {
		r.badCompanies[row] = true
	}

	issues := make([]model.ImportError, 0, len(parsed.Errors)+len(companyIssues)+len(contactIssues)+len(relationIssues))
	issues = append(issues, parsed.Errors...)
	issues = append(issues, companyIssues...)
	issues = append(issues, contactIssues...)
	issues = append(issues, relationIssues...)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Row < issues[j].Row })
	r.Issues = issues

	for _, ranked := range p.scorer.Rank(parsed.Contacts) {
		c := parsed.Contacts[ranked.Index]
		r.Quality = append(r.Quality, ContactQuality{
			Row:          rowOf(c.SourceRow, ranked.Index),
			Name:         c.FullName(),
			QualityScore: ranked.Score,
		})
	}

	errs, warns := model.CountSeverity(issues)
	r.Summary = Summary{
		Companies:      len(parsed.Companies),
		Contacts:       len(parsed.Contacts),
		ValidCompanies: len(r.ValidCompanies()),
		ValidContacts:  len(r.ValidContacts()),
		Errors:         errs,
		Warnings:       warns,
	}

	zap.L().Info("importer: evaluated file",
		zap.String("file", fileName),
		zap.Int("companies", r.Summary.Companies),
		zap.Int("contacts", r.Summary.Contacts),
		zap.Int("valid_companies", r.Summary.ValidCompanies),
		zap.Int("valid_contacts", r.Summary.ValidContacts),
		zap.Int("errors", errs),
		zap.Int("warnings", warns),
	)
	return r
}

// ValidCompanies returns the companies with no error-severity finding.
func (r *Result) ValidCompanies() []model.CompanyCandidate {
	out := []model.CompanyCandidate{}
	for i, c := range r.Data.Companies {
		if !r.badCompanies[rowOf(c.SourceRow, i)] {
			out = append(out, c)
		}
	}
	return out
}

// ValidContacts returns the contacts with no error-severity finding.
// Relationship warnings never disqualify a contact.
func (r *Result) ValidContacts() []model.ContactCandidate {
	out := []model.ContactCandidate{}
	for i, c := range r.Data.Contacts {
		if !r.badContacts[rowOf(c.SourceRow, i)] {
			out = append(out, c)
		}
	}
	return out
}

// Run returns the audit record for r. ID and CreatedAt are left to the store.
func (r *Result) Run() model.ImportRun {
	return model.ImportRun{
		FileName:  r.FileName,
		Companies: r.Summary.Companies,
		Contacts:  r.Summary.Contacts,
		Errors:    r.Summary.Errors,
		Warnings:  r.Summary.Warnings,
	}
}

func errorRows(issues []model.ImportError) map[int]bool {
	rows := make(map[int]bool)
	for _, e := range issues {
		if e.IsError() {
			rows[e.Row] = true
		}
	}
	return rows
}

func rowOf(sourceRow, index int) int {
	if sourceRow > 0 {
		return sourceRow
	}
	return index + 1
}
