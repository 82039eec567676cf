package db

import "time"

// Run represents one invocation of the run dispatcher: a single command
// executed across one or more worktree contexts.
type Run struct {
	ID           string    `db:"id" json:"id"`
	Command      string    `db:"command" json:"command"`
	CommandName  string    `db:"command_name" json:"command_name,omitempty"`
	Mode         string    `db:"mode" json:"mode"`
	ContextCount int       `db:"context_count" json:"context_count"`
	StartedAt    time.Time `db:"started_at" json:"started_at"`
}

// Outcome values recorded for a run context
const (
	OutcomeLaunched  = "launched"
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// RunContext represents the per-worktree outcome within a run
type RunContext struct {
	ID           int64     `db:"id" json:"id"`
	RunID        string    `db:"run_id" json:"run_id"`
	WorktreeName string    `db:"worktree_name" json:"worktree_name"`
	Outcome      string    `db:"outcome" json:"outcome"`
	ExitCode     int       `db:"exit_code" json:"exit_code"`
	Error        string    `db:"error" json:"error,omitempty"`
	FinishedAt   time.Time `db:"finished_at" json:"finished_at"`
}

// RunWithContexts bundles a run with its per-worktree outcomes for API responses
type RunWithContexts struct {
	Run      Run          `json:"run"`
	Contexts []RunContext `json:"contexts"`
}
