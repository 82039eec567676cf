package operations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"treeline/internal/db"
	"treeline/internal/execution"
	"treeline/internal/logger"
)

// Event types broadcast over the server websocket
const (
	EventRunStarted       = "run_started"
	EventContextLaunched  = "context_launched"
	EventContextCompleted = "context_completed"
)

// Event is a run lifecycle notification
type Event struct {
	Type         string    `json:"type"`
	RunID        string    `json:"run_id,omitempty"`
	Command      string    `json:"command,omitempty"`
	CommandName  string    `json:"command_name,omitempty"`
	WorktreeName string    `json:"worktree_name,omitempty"`
	ExitCode     int       `json:"exit_code,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Broadcaster fans an event out to connected listeners
type Broadcaster interface {
	Broadcast(event Event)
}

// Recorder persists one run and its per-context outcomes. It implements
// execution.Observer; persistence failures are warned about and never
// propagate into the execution path.
type Recorder struct {
	repo  *db.RunRepository
	bcast Broadcaster
	runID string
	log   *logrus.Entry
}

// NewRecorder creates a recorder. Both repo and bcast may be nil, in which
// case the corresponding sink is skipped.
func NewRecorder(repo *db.RunRepository, bcast Broadcaster) *Recorder {
	return &Recorder{
		repo:  repo,
		bcast: bcast,
		log:   logger.WithField("component", "recorder"),
	}
}

// StartRun records the run header before any context is dispatched
func (r *Recorder) StartRun(ctx context.Context, parsed *execution.ParsedCommand, contextCount int) {
	r.runID = uuid.New().String()

	if r.repo != nil {
		run := &db.Run{
			ID:           r.runID,
			Command:      parsed.Command,
			CommandName:  parsed.CommandName,
			Mode:         string(parsed.Mode),
			ContextCount: contextCount,
			StartedAt:    time.Now(),
		}
		if err := r.repo.CreateRun(ctx, run); err != nil {
			r.log.WithError(err).Warn("Failed to record run")
		}
	}

	r.notify(Event{
		Type:        EventRunStarted,
		RunID:       r.runID,
		Command:     parsed.Command,
		CommandName: parsed.CommandName,
	})
}

// ContextLaunched records a fire-and-forget spawn outcome
func (r *Recorder) ContextLaunched(c execution.Context, res execution.LaunchResult) {
	outcome := db.OutcomeLaunched
	errMsg := ""
	if res.Err != nil {
		outcome = db.OutcomeFailed
		errMsg = res.Err.Error()
	}
	r.record(c.WorktreeName, outcome, 0, errMsg)
	r.notify(Event{
		Type:         EventContextLaunched,
		RunID:        r.runID,
		WorktreeName: c.WorktreeName,
		CommandName:  c.CommandName,
		Error:        errMsg,
	})
}

// ContextCompleted records a run-to-completion outcome
func (r *Recorder) ContextCompleted(c execution.Context, res execution.CompletionResult) {
	outcome := db.OutcomeCompleted
	errMsg := ""
	if res.Err != nil {
		errMsg = res.Err.Error()
	}
	if res.Failed() {
		outcome = db.OutcomeFailed
	}
	r.record(c.WorktreeName, outcome, res.ExitCode, errMsg)
	r.notify(Event{
		Type:         EventContextCompleted,
		RunID:        r.runID,
		WorktreeName: c.WorktreeName,
		CommandName:  c.CommandName,
		ExitCode:     res.ExitCode,
		Error:        errMsg,
	})
}

func (r *Recorder) record(worktree, outcome string, exitCode int, errMsg string) {
	if r.repo == nil || r.runID == "" {
		return
	}
	rc := &db.RunContext{
		RunID:        r.runID,
		WorktreeName: worktree,
		Outcome:      outcome,
		ExitCode:     exitCode,
		Error:        errMsg,
		FinishedAt:   time.Now(),
	}
	if err := r.repo.AddContext(context.Background(), rc); err != nil {
		r.log.WithError(err).Warn("Failed to record run context")
	}
}

func (r *Recorder) notify(event Event) {
	if r.bcast == nil {
		return
	}
	event.Timestamp = time.Now()
	r.bcast.Broadcast(event)
}
