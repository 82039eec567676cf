package execution

import (
	"context"
)

// ExitMode runs all contexts to completion like InlineMode, but surfaces the
// number of failed contexts as a process-level exit code instead of an error,
// for non-interactive single-shot use (CI pipelines inspect the exit code,
// not a thrown aggregate).
type ExitMode struct {
	deps     Deps
	exitCode int
}

// Execute waits for all subprocesses and records the failure count. It
// returns nil even on failures; callers read ExitCode.
func (m *ExitMode) Execute(ctx context.Context, contexts []Context) error {
	results := runToCompletion(ctx, m.deps, contexts)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	m.exitCode = failed

	if failed > 0 {
		m.deps.log().Errorf("%d command(s) failed", failed)
	}
	return nil
}

// ExitCode returns the number of failed contexts from the last Execute;
// zero means all succeeded.
func (m *ExitMode) ExitCode() int {
	return m.exitCode
}
