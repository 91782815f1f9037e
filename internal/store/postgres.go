package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/schem-safety/permit-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
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
CREATE TABLE IF NOT EXISTS decisions (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	input       TEXT NOT NULL,
	transcript  TEXT NOT NULL DEFAULT '',
	band        TEXT NOT NULL,
	risk_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
	hazard_type TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	report_path TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_decisions_band ON decisions(band);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateDecision(ctx context.Context, d *model.Decision) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO decisions (id, input, transcript, band, risk_score, hazard_type, message, report_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Input, d.Transcript, string(d.Band), d.RiskScore, d.HazardType, d.Message, d.ReportPath, d.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert decision")
}

func (s *PostgresStore) GetDecision(ctx context.Context, id string) (*model.Decision, error) {
	var d model.Decision
	err := s.pool.QueryRow(ctx,
		`SELECT id, input, transcript, band, risk_score, hazard_type, message, report_path, created_at
		 FROM decisions WHERE id = $1`, id).
		Scan(&d.ID, &d.Input, &d.Transcript, &d.Band, &d.RiskScore, &d.HazardType, &d.Message, &d.ReportPath, &d.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get decision %s", id)
	}
	return &d, nil
}

func (s *PostgresStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]model.Decision, error) {
	query := `SELECT id, input, transcript, band, risk_score, hazard_type, message, report_path, created_at
		 FROM decisions WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Band != "" {
		query += ` AND band = ` + arg(string(filter.Band))
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ` + arg(filter.Since.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list decisions")
	}
	defer rows.Close()

	var out []model.Decision
	for rows.Next() {
		var d model.Decision
		if err := rows.Scan(&d.ID, &d.Input, &d.Transcript, &d.Band, &d.RiskScore, &d.HazardType, &d.Message, &d.ReportPath, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan decision")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list decisions iterate")
}
