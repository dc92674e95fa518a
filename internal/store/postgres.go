package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/db"
	"github.com/sells-group/media-import/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name_key       TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	domain         TEXT NOT NULL DEFAULT '',
	industry       TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT '',
	employee_count INTEGER,
	revenue        TEXT NOT NULL DEFAULT '',
	headquarters   TEXT NOT NULL DEFAULT '',
	website        TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS import_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	file_name  TEXT NOT NULL,
	companies  INTEGER NOT NULL DEFAULT 0,
	contacts   INTEGER NOT NULL DEFAULT 0,
	errors     INTEGER NOT NULL DEFAULT 0,
	warnings   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_import_runs_created_at ON import_runs(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.ExistingCompany, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, type FROM companies ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	out := []model.ExistingCompany{}
	for rows.Next() {
		var c model.ExistingCompany
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		c.Type = model.CompanyType(typ)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate companies")
}

var companyUpsert = db.UpsertConfig{
	Table: "companies",
	Columns: []string{
		"id", "name_key", "name", "domain", "industry", "type",
		"employee_count", "revenue", "headquarters", "website", "updated_at",
	},
	ConflictKeys: []string{"name_key"},
	UpdateCols: []string{
		"name", "domain", "industry", "type",
		"employee_count", "revenue", "headquarters", "website", "updated_at",
	},
}

// SaveCompanies upserts by normalized name through a COPY staging table.
// Rows sharing a normalized name keep the first.
func (s *PostgresStore) SaveCompanies(ctx context.Context, companies []model.CompanyCandidate) (int64, error) {
	now := time.Now().UTC()
	seen := make(map[string]bool, len(companies))
	rows := make([][]any, 0, len(companies))
	for _, c := range companies {
		key := model.NormalizeName(c.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, []any{
			uuid.New().String(), key, c.Name, c.Domain, c.Industry, string(c.Type),
			employeeCount(c.EmployeeCount), c.Revenue, c.Headquarters, c.Website, now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, companyUpsert, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save companies")
	}
	zap.L().Debug("postgres: saved companies", zap.Int64("rows", n))
	return n, nil
}

func (s *PostgresStore) RecordImport(ctx context.Context, run *model.ImportRun) error {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO import_runs (id, file_name, companies, contacts, errors, warnings, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.FileName, run.Companies, run.Contacts, run.Errors, run.Warnings, run.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert import run")
}

func (s *PostgresStore) GetImport(ctx context.Context, id string) (*model.ImportRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, file_name, companies, contacts, errors, warnings, created_at FROM import_runs WHERE id = $1`, id)

	var r model.ImportRun
	err := row.Scan(&r.ID, &r.FileName, &r.Companies, &r.Contacts, &r.Errors, &r.Warnings, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: import run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get import run %s", id)
	}
	return &r, nil
}

func (s *PostgresStore) ListImports(ctx context.Context, limit int) ([]model.ImportRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, file_name, companies, contacts, errors, warnings, created_at FROM import_runs ORDER BY created_at DESC LIMIT $1`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list import runs")
	}
	defer rows.Close()

	out := []model.ImportRun{}
	for rows.Next() {
		var r model.ImportRun
		if err := rows.Scan(&r.ID, &r.FileName, &r.Companies, &r.Contacts, &r.Errors, &r.Warnings, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import run")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate import runs")
}
