package execution

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"treeline/internal/errors"
)

// Kind enumerates the execution modes. No other values are permitted; an
// invalid value is a configuration error, never a silent fallback.
type Kind string

const (
	KindWindow     Kind = "window"
	KindInline     Kind = "inline"
	KindBackground Kind = "background"
	KindExit       Kind = "exit"
)

// ParseKind validates a mode name
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindWindow, KindInline, KindBackground, KindExit:
		return Kind(s), nil
	}
	return "", errors.NewWithHint(errors.ErrInvalidMode,
		fmt.Sprintf("invalid execution mode %q", s),
		"valid modes are window, inline, background, exit")
}

// Mode runs a command across a batch of contexts under one concurrency and
// attachment policy. An empty context list is a no-op success. Per-context
// failures never abort sibling contexts; the returned error aggregates the
// failure count. There is no cancellation path beyond ctx once Execute begins.
type Mode interface {
	Execute(ctx context.Context, contexts []Context) error
}

// Multiplexer is the subset of tmux operations the execution layer needs
type Multiplexer interface {
	Available() bool
	EnsureSession(ctx context.Context, name, dir string) error
	NewWindow(ctx context.Context, session, name, dir, command string) error
	WindowExists(ctx context.Context, session, name string) (bool, error)
	SortWindows(ctx context.Context, session string) error
}

// LaunchResult is the outcome of a fire-and-forget spawn: it certifies launch,
// not correct execution. Produced by WindowMode and BackgroundMode.
type LaunchResult struct {
	WorktreeName string
	Err          error
}

// CompletionResult is the outcome of a run-to-completion subprocess.
// Produced by InlineMode and ExitMode.
type CompletionResult struct {
	WorktreeName string
	ExitCode     int
	Err          error
}

// Failed reports whether the context's command failed (spawn error or
// non-zero exit; both aggregate identically)
func (r CompletionResult) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Observer receives per-context outcomes as they settle. Optional; used by
// the run-history recorder and the server event stream.
type Observer interface {
	ContextLaunched(c Context, r LaunchResult)
	ContextCompleted(c Context, r CompletionResult)
}

// Deps carries the injected collaborators shared by all modes. Components
// take these explicitly rather than reading ambient globals so execution
// stays deterministic under test.
type Deps struct {
	// Session is the tmux session name, normally the project name
	Session string
	// Tmux is the multiplexer integration; TmuxEnabled gates its use
	Tmux        Multiplexer
	TmuxEnabled bool
	// Log receives lifecycle messages; command output goes to Stdout/Stderr
	Log    *logrus.Entry
	Stdout io.Writer
	Stderr io.Writer
	// LogDir is where BackgroundMode redirects child stdio
	LogDir string
	// Observer is notified of per-context outcomes, may be nil
	Observer Observer
}

func (d Deps) log() *logrus.Entry {
	if d.Log != nil {
		return d.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func (d Deps) launched(c Context, r LaunchResult) {
	if d.Observer != nil {
		d.Observer.ContextLaunched(c, r)
	}
}

func (d Deps) completed(c Context, r CompletionResult) {
	if d.Observer != nil {
		d.Observer.ContextCompleted(c, r)
	}
}

// NewMode maps a mode kind to an implementation. The set is closed; a value
// outside the enumeration here means a caller skipped validation, so the
// error spells out the valid values.
func NewMode(kind Kind, deps Deps) (Mode, error) {
	switch kind {
	case KindWindow:
		return &WindowMode{deps: deps}, nil
	case KindInline:
		return &InlineMode{deps: deps}, nil
	case KindBackground:
		return &BackgroundMode{deps: deps}, nil
	case KindExit:
		return &ExitMode{deps: deps}, nil
	}
	return nil, errors.NewWithHint(errors.ErrInvalidMode,
		fmt.Sprintf("invalid execution mode %q", kind),
		"valid modes are window, inline, background, exit")
}

// aggregateError builds the "N command(s) failed" error, or nil
func aggregateError(failed int) error {
	if failed == 0 {
		return nil
	}
	return errors.New(errors.ErrExecutionFailed, fmt.Sprintf("%d command(s) failed", failed))
}

// shellQuote single-quotes a value for embedding in a shell command line
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
