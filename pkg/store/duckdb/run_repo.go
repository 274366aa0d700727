package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sobolyok/risk-project/pkg/model"
)

// RunRepo handles experiment run persistence
type RunRepo struct {
	client *Client
}

// NewRunRepo creates a new run repository
func NewRunRepo(client *Client) *RunRepo {
	return &RunRepo{client: client}
}

// Insert inserts a run, ignoring duplicates
func (r *RunRepo) Insert(ctx context.Context, run *model.Run) error {
	return insertRun(ctx, r.client.db, run)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertRun(ctx context.Context, db execer, run *model.Run) error {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var start interface{}
	if !run.Start.IsZero() {
		start = run.Start
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO experiment_runs (
			run_id, symbol, percent, p, q, ma_window,
			start_date, boundary_date, end_date, train_rows, test_rows, config_hash, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO NOTHING
	`,
		run.RunID, run.Symbol, run.Percent, run.P, run.Q, run.MAWindow,
		start, run.Boundary, run.End, run.TrainRows, run.TestRows, run.ConfigHash, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	return nil
}

// Exists checks if a run exists by ID
func (r *RunRepo) Exists(ctx context.Context, runID string) (bool, error) {
	var count int
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM experiment_runs WHERE run_id = ?", runID)
	err := row.Scan(&count)
	return count > 0, err
}

// GetByID retrieves a run by ID
func (r *RunRepo) GetByID(ctx context.Context, runID string) (*model.Run, error) {
	query := `
		SELECT run_id, symbol, percent, p, q, ma_window,
			   start_date, boundary_date, end_date, train_rows, test_rows, config_hash, created_at
		FROM experiment_runs
		WHERE run_id = ?
	`

	row := r.client.QueryRow(ctx, query, runID)
	var run model.Run
	var start sql.NullTime
	var hash sql.NullString
	err := row.Scan(
		&run.RunID, &run.Symbol, &run.Percent, &run.P, &run.Q, &run.MAWindow,
		&start, &run.Boundary, &run.End, &run.TrainRows, &run.TestRows, &hash, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		run.Start = start.Time
	}
	run.ConfigHash = hash.String

	return &run, nil
}

// Count returns the number of runs recorded for a symbol
func (r *RunRepo) Count(ctx context.Context, symbol string) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM experiment_runs WHERE symbol = ?", symbol)
	err := row.Scan(&count)
	return count, err
}
