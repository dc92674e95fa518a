// Package store persists what callers keep around an import: the company
// lookup table and an audit log of import runs. The pipeline never uses it.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/media-import/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface.
type Store interface {
	// Companies
	ListCompanies(ctx context.Context) ([]model.ExistingCompany, error)
	SaveCompanies(ctx context.Context, companies []model.CompanyCandidate) (int64, error)

	// Import runs
	RecordImport(ctx context.Context, run *model.ImportRun) error
	GetImport(ctx context.Context, id string) (*model.ImportRun, error)
	ListImports(ctx context.Context, limit int) ([]model.ImportRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func employeeCount(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
