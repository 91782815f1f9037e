package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/schem-safety/permit-cli/internal/model"
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	id          TEXT PRIMARY KEY,
	input       TEXT NOT NULL,
	transcript  TEXT NOT NULL DEFAULT '',
	band        TEXT NOT NULL,
	risk_score  REAL NOT NULL DEFAULT 0,
	hazard_type TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	report_path TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_decisions_band ON decisions(band);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateDecision(ctx context.Context, d *model.Decision) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, input, transcript, band, risk_score, hazard_type, message, report_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Input, d.Transcript, string(d.Band), d.RiskScore, d.HazardType, d.Message, d.ReportPath, d.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert decision")
}

func (s *SQLiteStore) GetDecision(ctx context.Context, id string) (*model.Decision, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, transcript, band, risk_score, hazard_type, message, report_path, created_at
		 FROM decisions WHERE id = ?`, id)

	var d model.Decision
	err := row.Scan(&d.ID, &d.Input, &d.Transcript, &d.Band, &d.RiskScore, &d.HazardType, &d.Message, &d.ReportPath, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get decision %s", id)
	}
	return &d, nil
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]model.Decision, error) {
	query := `SELECT id, input, transcript, band, risk_score, hazard_type, message, report_path, created_at
		 FROM decisions WHERE 1=1`
	var args []any

	if filter.Band != "" {
		query += ` AND band = ?`
		args = append(args, string(filter.Band))
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list decisions")
	}
	defer rows.Close()

	var out []model.Decision
	for rows.Next() {
		var d model.Decision
		if err := rows.Scan(&d.ID, &d.Input, &d.Transcript, &d.Band, &d.RiskScore, &d.HazardType, &d.Message, &d.ReportPath, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan decision")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list decisions iterate")
}
