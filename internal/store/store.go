// Package store persists triage decisions. Two backends are provided:
// SQLite for single-operator use and Postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/schem-safety/permit-cli/internal/model"
)

// DecisionFilter specifies criteria for listing decisions.
type DecisionFilter struct {
	Band   model.Band `json:"band,omitempty"`
	Since  time.Time  `json:"since,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}

// Store defines the persistence interface for triage decisions.
type Store interface {
	CreateDecision(ctx context.Context, d *model.Decision) error
	GetDecision(ctx context.Context, id string) (*model.Decision, error)
	ListDecisions(ctx context.Context, filter DecisionFilter) ([]model.Decision, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
