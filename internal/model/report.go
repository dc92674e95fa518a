package model

import "time"

// Severity distinguishes blocking errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ImportError is one finding against a source row.
type ImportError struct {
	Row      int      `json:"row"`
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// IsError reports whether the finding blocks persistence of its record.
func (e ImportError) IsError() bool {
	return e.Severity == SeverityError
}

// NewError builds an error-severity finding.
func NewError(row int, field, value, msg string) ImportError {
	return ImportError{Row: row, Field: field, Value: value, Message: msg, Severity: SeverityError}
}

// NewWarning builds a warning-severity finding.
func NewWarning(row int, field, value, msg string) ImportError {
	return ImportError{Row: row, Field: field, Value: value, Message: msg, Severity: SeverityWarning}
}

// CountSeverity tallies errors and warnings.
func CountSeverity(errs []ImportError) (errors, warnings int) {
	for _, e := range errs {
		if e.IsError() {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// ParsedData is the output of the file parser.
type ParsedData struct {
	Companies []CompanyCandidate `json:"companies"`
	Contacts  []ContactCandidate `json:"contacts"`
	Errors    []ImportError      `json:"errors"`
	Preview   []RawRow           `json:"preview"`
}

// ExistingCompany is a row of the caller-supplied lookup table.
type ExistingCompany struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type CompanyType `json:"type,omitempty"`
}

// ImportRun is the audit record a caller keeps for one import invocation.
type ImportRun struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Companies int       `json:"companies"`
	Contacts  int       `json:"contacts"`
	Errors    int       `json:"errors"`
	Warnings  int       `json:"warnings"`
	CreatedAt time.Time `json:"created_at"`
}
