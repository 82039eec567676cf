package execution_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeline/internal/execution"
	"treeline/internal/testutil"
)

func windowDeps(tm *testutil.FakeMultiplexer, obs *testutil.FakeObserver) execution.Deps {
	deps := execution.Deps{
		Session:     "myproject",
		Tmux:        tm,
		TmuxEnabled: true,
	}
	// Assign only when non-nil so a nil *FakeObserver doesn't become a
	// non-nil Observer interface value.
	if obs != nil {
		deps.Observer = obs
	}
	return deps
}

func TestWindowModeCreatesNamedWindows(t *testing.T) {
	tm := testutil.NewFakeMultiplexer()
	obs := testutil.NewFakeObserver()

	mode, err := execution.NewMode(execution.KindWindow, windowDeps(tm, obs))
	require.NoError(t, err)

	contexts := []execution.Context{
		{WorktreeName: "feature-1", WorktreePath: "/tmp/f1", CommandName: "dev", Command: "npm run dev"},
		{WorktreeName: "feature-2", WorktreePath: "/tmp/f2", CommandName: "dev", Command: "npm run dev"},
	}
	require.NoError(t, mode.Execute(context.Background(), contexts))

	assert.True(t, tm.Sessions["myproject"])
	assert.Equal(t, []string{"feature-1::dev", "feature-2::dev"}, tm.Windows["myproject"])
	assert.Equal(t, 2, obs.LaunchedCount())
}

func TestWindowModeReturnsBeforeCommandCompletes(t *testing.T) {
	tm := testutil.NewFakeMultiplexer()
	mode, err := execution.NewMode(execution.KindWindow, windowDeps(tm, nil))
	require.NoError(t, err)

	// A command that would take far longer than the launch itself
	contexts := []execution.Context{
		{WorktreeName: "wt", WorktreePath: "/tmp/wt", CommandName: "slow", Command: "sleep 3600"},
	}

	start := time.Now()
	require.NoError(t, mode.Execute(context.Background(), contexts))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWindowModeKeepsShellAfterCommand(t *testing.T) {
	tm := testutil.NewFakeMultiplexer()
	mode, err := execution.NewMode(execution.KindWindow, windowDeps(tm, nil))
	require.NoError(t, err)

	contexts := []execution.Context{
		{WorktreeName: "wt", WorktreePath: "/tmp/wt", CommandName: "dev", Command: "npm run dev"},
	}
	require.NoError(t, mode.Execute(context.Background(), contexts))

	cmd := tm.NewWindowCommands["wt::dev"]
	assert.Contains(t, cmd, "npm run dev")
	assert.Contains(t, cmd, "exec ${SHELL:-sh}")
}

func TestWindowModeExportsOverlayVars(t *testing.T) {
	tm := testutil.NewFakeMultiplexer()
	mode, err := execution.NewMode(execution.KindWindow, windowDeps(tm, nil))
	require.NoError(t, err)

	contexts := []execution.Context{
		{
			WorktreeName: "wt",
			WorktreePath: "/tmp/wt",
			CommandName:  "dev",
			Command:      "npm run dev",
			Env:          map[string]string{"NODE_ENV": "test"},
			Ports:        []int{3000},
		},
	}
	require.NoError(t, mode.Execute(context.Background(), contexts))

	cmd := tm.NewWindowCommands["wt::dev"]
	assert.Contains(t, cmd, "NODE_ENV='test'")
	assert.Contains(t, cmd, "TREELINE_WORKTREE_NAME='wt'")
	assert.Contains(t, cmd, "TREELINE_PORT_1='3000'")
	assert.Contains(t, cmd, "TREELINE_PORT='3000'")
}

func TestWindowModeSessionFailureFailsAllContexts(t *testing.T) {
	tm := testutil.NewFakeMultiplexer()
	tm.EnsureSessionErr = assert.AnError
	obs := testutil.NewFakeObserver()

	mode, err := execution.NewMode(execution.KindWindow, windowDeps(tm, obs))
	require.NoError(t, err)

	contexts := []execution.Context{
		{WorktreeName: "a", WorktreePath: "/tmp/a", Command: "true"},
		{WorktreeName: "b", WorktreePath: "/tmp/b", Command: "true"},
	}
	err = mode.Execute(context.Background(), contexts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 command(s) failed")
	assert.Equal(t, 2, obs.LaunchedCount())
}

func TestWindowModeCountsPerWindowFailures(t *testing.T) {
	tm := testutil.NewFakeMultiplexer()
	tm.NewWindowErr = assert.AnError

	mode, err := execution.NewMode(execution.KindWindow, windowDeps(tm, nil))
	require.NoError(t, err)

	contexts := []execution.Context{
		{WorktreeName: "a", WorktreePath: "/tmp/a", Command: "true"},
		{WorktreeName: "b", WorktreePath: "/tmp/b", Command: "true"},
	}
	err = mode.Execute(context.Background(), contexts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 command(s) failed")
}
