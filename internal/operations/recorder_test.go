package operations

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeline/internal/execution"
)

type captureBroadcaster struct {
	mu     sync.Mutex
	events []Event
}

func (b *captureBroadcaster) Broadcast(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBroadcaster) all() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

func TestRecorderBroadcastsLifecycleEvents(t *testing.T) {
	bcast := &captureBroadcaster{}
	rec := NewRecorder(nil, bcast)

	parsed := &execution.ParsedCommand{
		Type:        execution.Predefined,
		Command:     "npm run dev",
		CommandName: "dev",
		Mode:        execution.KindWindow,
	}
	rec.StartRun(context.Background(), parsed, 2)

	c := execution.Context{WorktreeName: "feature-1", CommandName: "dev"}
	rec.ContextLaunched(c, execution.LaunchResult{WorktreeName: "feature-1"})
	rec.ContextCompleted(c, execution.CompletionResult{WorktreeName: "feature-1", ExitCode: 2, Err: assert.AnError})

	events := bcast.all()
	require.Len(t, events, 3)

	assert.Equal(t, EventRunStarted, events[0].Type)
	assert.Equal(t, "dev", events[0].CommandName)
	assert.NotEmpty(t, events[0].RunID)

	assert.Equal(t, EventContextLaunched, events[1].Type)
	assert.Equal(t, "feature-1", events[1].WorktreeName)
	assert.Equal(t, events[0].RunID, events[1].RunID)

	assert.Equal(t, EventContextCompleted, events[2].Type)
	assert.Equal(t, 2, events[2].ExitCode)
	assert.NotEmpty(t, events[2].Error)
	assert.False(t, events[2].Timestamp.IsZero())
}

func TestRecorderNilSinksAreSafe(t *testing.T) {
	rec := NewRecorder(nil, nil)

	parsed := &execution.ParsedCommand{Type: execution.Inline, Command: "echo", Mode: execution.KindInline}
	rec.StartRun(context.Background(), parsed, 1)

	c := execution.Context{WorktreeName: "wt"}
	assert.NotPanics(t, func() {
		rec.ContextLaunched(c, execution.LaunchResult{WorktreeName: "wt"})
		rec.ContextCompleted(c, execution.CompletionResult{WorktreeName: "wt"})
	})
}

func TestRecorderFailedLaunchOutcome(t *testing.T) {
	bcast := &captureBroadcaster{}
	rec := NewRecorder(nil, bcast)

	parsed := &execution.ParsedCommand{Type: execution.Inline, Command: "x", Mode: execution.KindBackground}
	rec.StartRun(context.Background(), parsed, 1)

	c := execution.Context{WorktreeName: "wt"}
	rec.ContextLaunched(c, execution.LaunchResult{WorktreeName: "wt", Err: assert.AnError})

	events := bcast.all()
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[1].Error)
}
