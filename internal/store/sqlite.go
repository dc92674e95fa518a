package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/media-import/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id             TEXT PRIMARY KEY,
	name_key       TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	domain         TEXT NOT NULL DEFAULT '',
	industry       TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT '',
	employee_count INTEGER,
	revenue        TEXT NOT NULL DEFAULT '',
	headquarters   TEXT NOT NULL DEFAULT '',
	website        TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS import_runs (
	id         TEXT PRIMARY KEY,
	file_name  TEXT NOT NULL,
	companies  INTEGER NOT NULL DEFAULT 0,
	contacts   INTEGER NOT NULL DEFAULT 0,
	errors     INTEGER NOT NULL DEFAULT 0,
	warnings   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_import_runs_created_at ON import_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.ExistingCompany, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type FROM companies ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.ExistingCompany{}
	for rows.Next() {
		var c model.ExistingCompany
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate companies")
}

// SaveCompanies upserts by normalized name; a later import overwrites the
// descriptive columns of an earlier one.
func (s *SQLiteStore) SaveCompanies(ctx context.Context, companies []model.CompanyCandidate) (int64, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO companies
			(id, name_key, name, domain, industry, type, employee_count, revenue, headquarters, website, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name_key) DO UPDATE SET
			name = excluded.name,
			domain = excluded.domain,
			industry = excluded.industry,
			type = excluded.type,
			employee_count = excluded.employee_count,
			revenue = excluded.revenue,
			headquarters = excluded.headquarters,
			website = excluded.website,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare company upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	var n int64
	for _, c := range companies {
		res, err := stmt.ExecContext(ctx,
			uuid.New().String(), model.NormalizeName(c.Name), c.Name, c.Domain, c.Industry, string(c.Type),
			employeeCount(c.EmployeeCount), c.Revenue, c.Headquarters, c.Website, now, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert company %s", c.Name)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit companies")
	}
	return n, nil
}

func (s *SQLiteStore) RecordImport(ctx context.Context, run *model.ImportRun) error {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, file_name, companies, contacts, errors, warnings, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.FileName, run.Companies, run.Contacts, run.Errors, run.Warnings, run.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert import run")
}

func (s *SQLiteStore) GetImport(ctx context.Context, id string) (*model.ImportRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, companies, contacts, errors, warnings, created_at FROM import_runs WHERE id = ?`, id)

	var r model.ImportRun
	err := row.Scan(&r.ID, &r.FileName, &r.Companies, &r.Contacts, &r.Errors, &r.Warnings, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: import run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get import run %s", id)
	}
	return &r, nil
}

func (s *SQLiteStore) ListImports(ctx context.Context, limit int) ([]model.ImportRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, companies, contacts, errors, warnings, created_at FROM import_runs ORDER BY created_at DESC LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list import runs")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.ImportRun{}
	for rows.Next() {
		var r model.ImportRun
		if err := rows.Scan(&r.ID, &r.FileName, &r.Companies, &r.Contacts, &r.Errors, &r.Warnings, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import run")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate import runs")
}
