package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// RunRepository handles run history persistence
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(database *DB) *RunRepository {
	return &RunRepository{db: database.DB}
}

// CreateRun inserts a new run record
func (r *RunRepository) CreateRun(ctx context.Context, run *Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	query := `
		INSERT INTO runs (id, command, command_name, mode, context_count, started_at)
		VALUES (:id, :command, :command_name, :mode, :context_count, :started_at)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// AddContext records a per-worktree outcome for a run
func (r *RunRepository) AddContext(ctx context.Context, rc *RunContext) error {
	if rc.FinishedAt.IsZero() {
		rc.FinishedAt = time.Now()
	}

	query := `
		INSERT INTO run_contexts (run_id, worktree_name, outcome, exit_code, error, finished_at)
		VALUES (:run_id, :worktree_name, :outcome, :exit_code, :error, :finished_at)`

	result, err := r.db.NamedExecContext(ctx, query, rc)
	if err != nil {
		return fmt.Errorf("failed to add run context: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		rc.ID = id
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	if err := r.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	runs := []Run{}
	err := r.db.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListContexts returns all recorded contexts for a run
func (r *RunRepository) ListContexts(ctx context.Context, runID string) ([]RunContext, error) {
	contexts := []RunContext{}
	err := r.db.SelectContext(ctx, &contexts,
		"SELECT * FROM run_contexts WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run contexts: %w", err)
	}
	return contexts, nil
}

// ListRunsWithContexts returns recent runs with their contexts attached
func (r *RunRepository) ListRunsWithContexts(ctx context.Context, limit int) ([]RunWithContexts, error) {
	runs, err := r.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]RunWithContexts, 0, len(runs))
	for _, run := range runs {
		contexts, err := r.ListContexts(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, RunWithContexts{Run: run, Contexts: contexts})
	}
	return result, nil
}
