package migration

import (
	"context"
	"fmt"

	"goportfolio/internal"
	"goportfolio/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// Step is one idempotent schema change
type Step struct {
	Name string
	SQL  string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	steps   []Step
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		steps:   Steps(),
		logger:  internal.NewDefaultLogger().WithPrefix("migration"),
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps returns the ordered schema changes
func Steps() []Step {
	return []Step{
		{Name: "create portfolios table", SQL: `
		CREATE TABLE IF NOT EXISTS portfolios (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			projects TEXT[] NOT NULL,
			criteria TEXT[] NOT NULL,
			epsilon DOUBLE PRECISION NOT NULL CHECK (epsilon > 0),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`},
		{Name: "create evaluation_records table", SQL: `
		CREATE TABLE IF NOT EXISTS evaluation_records (
			seq BIGSERIAL PRIMARY KEY,
			portfolio_id VARCHAR(64) NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
			id VARCHAR(64) NOT NULL,
			evaluator_id VARCHAR(255) NOT NULL,
			type VARCHAR(20) NOT NULL CHECK (type IN ('COMPARISON', 'RANGE', 'RANKING', 'THRESHOLD')),
			spec JSONB NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (portfolio_id, id)
		)
	`},
		{Name: "create indexes", SQL: `
		CREATE INDEX IF NOT EXISTS idx_portfolios_created_at ON portfolios(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_records_portfolio_seq ON evaluation_records(portfolio_id, seq);
		CREATE INDEX IF NOT EXISTS idx_records_evaluator ON evaluation_records(evaluator_id)
	`},
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for i, step := range r.steps {
		r.logger.Info("Running migration %03d: %s", i+1, step.Name)
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to %s", step.Name))
		}
	}
	r.logger.Info("Schema at version %s", r.version)
	return nil
}
