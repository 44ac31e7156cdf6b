// Package db provides PostgreSQL persistence for insight runs.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/abm-insights/internal/types"
)

// Run statuses. A run enters processing at creation and transitions exactly
// once, to completed or failed.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Run is the durable record of one pipeline execution.
type Run struct {
	ID          uuid.UUID        `json:"id"`
	Company     string           `json:"company"`
	Domain      string           `json:"domain"`
	Status      string           `json:"status"`
	Result      *types.RunResult `json:"result,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Pool exposes the underlying pool so other stores can share the connection.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the runs table if it does not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS abm_runs (
			id UUID PRIMARY KEY,
			company TEXT NOT NULL,
			domain TEXT NOT NULL,
			status TEXT NOT NULL,
			result JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure runs schema: %w", err)
	}
	return nil
}

// CreateRun inserts a new run with status processing and returns its id.
func (db *DB) CreateRun(ctx context.Context, company, domain string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO abm_runs (id, company, domain, status) VALUES ($1, $2, $3, $4)`,
		id, company, domain, StatusProcessing,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun stores the result payload and marks the run completed. The
// status guard keeps the transition one-way: a completed or failed run is
// never moved back.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, result *types.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE abm_runs SET status = $1, result = $2, completed_at = NOW()
		 WHERE id = $3 AND status = $4`,
		StatusCompleted, resultJSON, runID, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s is not in processing state", runID)
	}
	return nil
}

// FailRun marks the run failed. Like CompleteRun, only a processing run moves.
func (db *DB) FailRun(ctx context.Context, runID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE abm_runs SET status = $1, completed_at = NOW()
		 WHERE id = $2 AND status = $3`,
		StatusFailed, runID, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s is not in processing state", runID)
	}
	return nil
}

// GetRun retrieves a run by id. Returns nil when no run exists.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	var resultJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, company, domain, status, result, created_at, completed_at
		 FROM abm_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Company, &run.Domain, &run.Status, &resultJSON, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if len(resultJSON) > 0 {
		var result types.RunResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
		}
		run.Result = &result
	}
	return &run, nil
}

// ListRuns retrieves recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, company, domain, status, created_at, completed_at
		 FROM abm_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Company, &run.Domain, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
