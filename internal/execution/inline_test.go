package execution_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeline/internal/execution"
	"treeline/internal/testutil"
)

// syncBuffer makes bytes.Buffer safe for the concurrent writers inline mode uses
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInlineModeStreamsPrefixedOutput(t *testing.T) {
	var out, errOut syncBuffer
	deps := execution.Deps{Stdout: &out, Stderr: &errOut}

	mode, err := execution.NewMode(execution.KindInline, deps)
	require.NoError(t, err)

	contexts := []execution.Context{
		{WorktreeName: "feature-1", WorktreePath: t.TempDir(), Command: "echo hello; echo oops >&2"},
	}
	require.NoError(t, mode.Execute(context.Background(), contexts))

	assert.Contains(t, out.String(), "[feature-1] Output: hello")
	assert.Contains(t, errOut.String(), "[feature-1] Errors: oops")
}

func TestInlineModeRunsAllContextsDespiteFailures(t *testing.T) {
	var out syncBuffer
	obs := testutil.NewFakeObserver()
	deps := execution.Deps{Stdout: &out, Observer: obs}

	mode, err := execution.NewMode(execution.KindInline, deps)
	require.NoError(t, err)

	dir := t.TempDir()
	contexts := []execution.Context{
		{WorktreeName: "ok-1", WorktreePath: dir, Command: "echo one"},
		{WorktreeName: "bad", WorktreePath: dir, Command: "exit 3"},
		{WorktreeName: "ok-2", WorktreePath: dir, Command: "echo two"},
	}

	err = mode.Execute(context.Background(), contexts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 command(s) failed")

	// No fail-fast: both successful contexts still ran
	assert.Contains(t, out.String(), "[ok-1] Output: one")
	assert.Contains(t, out.String(), "[ok-2] Output: two")
	assert.Equal(t, 3, obs.CompletedCount())
	assert.Equal(t, 3, obs.ExitCodes["bad"])
}

func TestInlineModeAggregatesMultipleFailures(t *testing.T) {
	mode, err := execution.NewMode(execution.KindInline, execution.Deps{})
	require.NoError(t, err)

	dir := t.TempDir()
	contexts := []execution.Context{
		{WorktreeName: "a", WorktreePath: dir, Command: "exit 1"},
		{WorktreeName: "b", WorktreePath: dir, Command: "exit 2"},
		{WorktreeName: "c", WorktreePath: dir, Command: "true"},
	}

	err = mode.Execute(context.Background(), contexts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 command(s) failed")
}

func TestInlineModeInjectsEnvironment(t *testing.T) {
	var out syncBuffer
	deps := execution.Deps{Stdout: &out}

	mode, err := execution.NewMode(execution.KindInline, deps)
	require.NoError(t, err)

	contexts := []execution.Context{
		{
			WorktreeName: "wt",
			WorktreePath: t.TempDir(),
			Command:      "echo $TREELINE_WORKTREE_NAME $TREELINE_PORT",
			Ports:        []int{4242},
		},
	}
	require.NoError(t, mode.Execute(context.Background(), contexts))
	assert.Contains(t, out.String(), "[wt] Output: wt 4242")
}

func TestExitModeReportsFailureCountAsExitCode(t *testing.T) {
	mode, err := execution.NewMode(execution.KindExit, execution.Deps{})
	require.NoError(t, err)

	dir := t.TempDir()
	contexts := []execution.Context{
		{WorktreeName: "a", WorktreePath: dir, Command: "exit 1"},
		{WorktreeName: "b", WorktreePath: dir, Command: "true"},
		{WorktreeName: "c", WorktreePath: dir, Command: "exit 7"},
	}

	// Execute itself succeeds; failures surface through ExitCode
	require.NoError(t, mode.Execute(context.Background(), contexts))

	em, ok := mode.(*execution.ExitMode)
	require.True(t, ok)
	assert.Equal(t, 2, em.ExitCode())
}

func TestExitModeAllSucceed(t *testing.T) {
	mode, err := execution.NewMode(execution.KindExit, execution.Deps{})
	require.NoError(t, err)

	contexts := []execution.Context{
		{WorktreeName: "a", WorktreePath: t.TempDir(), Command: "true"},
	}
	require.NoError(t, mode.Execute(context.Background(), contexts))
	assert.Equal(t, 0, mode.(*execution.ExitMode).ExitCode())
}

func TestInlineModeMultilineOutputKeepsPrefixPerLine(t *testing.T) {
	var out syncBuffer
	mode, err := execution.NewMode(execution.KindInline, execution.Deps{Stdout: &out})
	require.NoError(t, err)

	contexts := []execution.Context{
		{WorktreeName: "wt", WorktreePath: t.TempDir(), Command: "printf 'one\\ntwo\\n'"},
	}
	require.NoError(t, mode.Execute(context.Background(), contexts))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[wt] Output: one", lines[0])
	assert.Equal(t, "[wt] Output: two", lines[1])
}
