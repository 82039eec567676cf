// Package testutil provides fake collaborators for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"treeline/internal/execution"
)

// FakeMultiplexer is an in-memory stand-in for tmux. Windows are tracked per
// session; error fields let tests force specific failures.
type FakeMultiplexer struct {
	mu sync.Mutex

	// Windows maps session -> window names in creation order
	Windows map[string][]string

	// Sessions that exist
	Sessions map[string]bool

	Unavailable      bool
	EnsureSessionErr error
	NewWindowErr     error
	WindowExistsErr  error
	SortErr          error

	// SortCalls counts SortWindows invocations
	SortCalls int
	// NewWindowCommands records the commands passed to NewWindow, by window name
	NewWindowCommands map[string]string
}

// NewFakeMultiplexer creates an empty fake
func NewFakeMultiplexer() *FakeMultiplexer {
	return &FakeMultiplexer{
		Windows:           map[string][]string{},
		Sessions:          map[string]bool{},
		NewWindowCommands: map[string]string{},
	}
}

func (f *FakeMultiplexer) Available() bool {
	return !f.Unavailable
}

func (f *FakeMultiplexer) EnsureSession(ctx context.Context, name, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EnsureSessionErr != nil {
		return f.EnsureSessionErr
	}
	f.Sessions[name] = true
	return nil
}

func (f *FakeMultiplexer) NewWindow(ctx context.Context, session, name, dir, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NewWindowErr != nil {
		return f.NewWindowErr
	}
	f.Windows[session] = append(f.Windows[session], name)
	f.NewWindowCommands[name] = command
	return nil
}

func (f *FakeMultiplexer) WindowExists(ctx context.Context, session, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WindowExistsErr != nil {
		return false, f.WindowExistsErr
	}
	for _, w := range f.Windows[session] {
		if w == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeMultiplexer) SortWindows(ctx context.Context, session string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SortCalls++
	return f.SortErr
}

// AddWindow seeds a window as already existing
func (f *FakeMultiplexer) AddWindow(session, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Windows[session] = append(f.Windows[session], name)
}

// WindowCount returns the number of windows in a session
func (f *FakeMultiplexer) WindowCount(session string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Windows[session])
}

// FakeObserver records every outcome it sees
type FakeObserver struct {
	mu        sync.Mutex
	Launched  []string
	Completed []string
	ExitCodes map[string]int
}

// NewFakeObserver creates an empty observer
func NewFakeObserver() *FakeObserver {
	return &FakeObserver{ExitCodes: map[string]int{}}
}

// LaunchedCount returns how many launch outcomes were observed
func (o *FakeObserver) LaunchedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Launched)
}

// CompletedCount returns how many completion outcomes were observed
func (o *FakeObserver) CompletedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Completed)
}

// ContextLaunched implements execution.Observer
func (o *FakeObserver) ContextLaunched(c execution.Context, r execution.LaunchResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Launched = append(o.Launched, c.WorktreeName)
}

// ContextCompleted implements execution.Observer
func (o *FakeObserver) ContextCompleted(c execution.Context, r execution.CompletionResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Completed = append(o.Completed, c.WorktreeName)
	o.ExitCodes[c.WorktreeName] = r.ExitCode
}

// String implements fmt.Stringer for test failure output
func (o *FakeObserver) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fmt.Sprintf("launched=%v completed=%v", o.Launched, o.Completed)
}
