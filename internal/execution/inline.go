package execution

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// InlineMode runs every context's subprocess concurrently in the current
// process, streams prefixed output, and waits for all of them to terminate.
// It is the only mode with synchronous observable completion, suited for
// scripting against.
type InlineMode struct {
	deps Deps
}

// Execute blocks until all subprocesses have exited, then aggregates failures
func (m *InlineMode) Execute(ctx context.Context, contexts []Context) error {
	results := runToCompletion(ctx, m.deps, contexts)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	return aggregateError(failed)
}

// runToCompletion launches all contexts' subprocesses at once and waits for
// every one of them. Completion ordering between contexts is not guaranteed;
// only the aggregate is deterministic. Shared by InlineMode and ExitMode.
func runToCompletion(ctx context.Context, deps Deps, contexts []Context) []CompletionResult {
	results := make([]CompletionResult, len(contexts))

	var outMu sync.Mutex
	var wg sync.WaitGroup
	for i, c := range contexts {
		wg.Add(1)
		go func(i int, c Context) {
			defer wg.Done()
			results[i] = runOne(ctx, deps, c, &outMu)
			deps.completed(c, results[i])
		}(i, c)
	}
	wg.Wait()

	return results
}

// runOne executes a single context's subprocess to completion
func runOne(ctx context.Context, deps Deps, c Context, outMu *sync.Mutex) CompletionResult {
	cmd := exec.CommandContext(ctx, "sh", "-c", c.ShellCommand())
	cmd.Dir = c.WorktreePath
	cmd.Env = c.Environ(os.Environ())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return spawnFailure(deps, c, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return spawnFailure(deps, c, err)
	}

	if err := cmd.Start(); err != nil {
		return spawnFailure(deps, c, err)
	}

	var streamWg sync.WaitGroup
	streamWg.Add(2)
	go func() {
		defer streamWg.Done()
		streamPrefixed(deps.Stdout, outMu, stdout, fmt.Sprintf("[%s] Output:", c.WorktreeName))
	}()
	go func() {
		defer streamWg.Done()
		streamPrefixed(deps.Stderr, outMu, stderr, fmt.Sprintf("[%s] Errors:", c.WorktreeName))
	}()
	streamWg.Wait()

	if err := cmd.Wait(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		deps.log().WithField("worktree", c.WorktreeName).WithError(err).Error("Command failed")
		return CompletionResult{WorktreeName: c.WorktreeName, ExitCode: exitCode, Err: err}
	}

	deps.log().WithField("worktree", c.WorktreeName).Debug("Command succeeded")
	return CompletionResult{WorktreeName: c.WorktreeName, ExitCode: 0}
}

func spawnFailure(deps Deps, c Context, err error) CompletionResult {
	deps.log().WithField("worktree", c.WorktreeName).WithError(err).Error("Failed to start command")
	return CompletionResult{WorktreeName: c.WorktreeName, ExitCode: -1, Err: err}
}

// streamPrefixed copies lines from r to w with a per-context prefix
func streamPrefixed(w io.Writer, mu *sync.Mutex, r io.Reader, prefix string) {
	if w == nil {
		io.Copy(io.Discard, r)
		return
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		mu.Lock()
		fmt.Fprintf(w, "%s %s\n", prefix, scanner.Text())
		mu.Unlock()
	}
}
