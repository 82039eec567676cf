// Package tmux wraps the tmux operations treeline depends on: window
// creation, presence checks and cosmetic window ordering.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// Window describes one tmux window inside a session
type Window struct {
	Index  int
	Name   string
	Active bool
}

// Manager executes tmux commands against the local server
type Manager struct{}

// New creates a new tmux manager
func New() *Manager {
	return &Manager{}
}

// Available reports whether the tmux binary can be found
func (m *Manager) Available() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// HasSession checks whether a session with the exact name exists
func (m *Manager) HasSession(ctx context.Context, name string) (bool, error) {
	cmd := exec.CommandContext(ctx, "tmux", "has-session", "-t", "="+name)
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("failed to check session %q: %w", name, err)
	}
	return true, nil
}

// EnsureSession creates a detached session if it does not exist yet
func (m *Manager) EnsureSession(ctx context.Context, name, dir string) error {
	exists, err := m.HasSession(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	cmd := exec.CommandContext(ctx, "tmux", "new-session", "-d", "-s", name, "-c", dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create session %q: %w, output: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// NewWindow opens a named window in the session, running command in dir
func (m *Manager) NewWindow(ctx context.Context, session, name, dir, command string) error {
	args := []string{"new-window", "-d", "-t", session + ":", "-n", name, "-c", dir}
	if command != "" {
		args = append(args, command)
	}

	cmd := exec.CommandContext(ctx, "tmux", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create window %q: %w, output: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ListWindows returns the windows of a session in index order
func (m *Manager) ListWindows(ctx context.Context, session string) ([]Window, error) {
	cmd := exec.CommandContext(ctx, "tmux", "list-windows", "-t", session,
		"-F", "#{window_index}\t#{window_name}\t#{window_active}")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows for session %q: %w", session, err)
	}

	var windows []Window
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			Index:  index,
			Name:   parts[1],
			Active: parts[2] == "1",
		})
	}

	return windows, nil
}

// WindowExists checks whether a window with the exact name exists in a session
func (m *Manager) WindowExists(ctx context.Context, session, name string) (bool, error) {
	windows, err := m.ListWindows(ctx, session)
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		if w.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// KillWindow kills a window by name
func (m *Manager) KillWindow(ctx context.Context, session, name string) error {
	cmd := exec.CommandContext(ctx, "tmux", "kill-window", "-t", fmt.Sprintf("%s:%s", session, name))
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to kill window %q: %w, output: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// SortWindows reorders a session's windows alphabetically by name. The reorder
// is a selection sort over swap-window calls so indexes stay dense.
func (m *Manager) SortWindows(ctx context.Context, session string) error {
	windows, err := m.ListWindows(ctx, session)
	if err != nil {
		return err
	}
	if len(windows) < 2 {
		return nil
	}

	names := make([]string, len(windows))
	indexes := make([]int, len(windows))
	for i, w := range windows {
		names[i] = w.Name
		indexes[i] = w.Index
	}

	want := append([]string(nil), names...)
	sort.Strings(want)

	for i := 0; i < len(names); i++ {
		if names[i] == want[i] {
			continue
		}
		j := i + 1
		for ; j < len(names); j++ {
			if names[j] == want[i] {
				break
			}
		}
		if j >= len(names) {
			continue
		}
		if err := m.swapWindows(ctx, session, indexes[i], indexes[j]); err != nil {
			return err
		}
		names[i], names[j] = names[j], names[i]
	}

	return nil
}

func (m *Manager) swapWindows(ctx context.Context, session string, a, b int) error {
	cmd := exec.CommandContext(ctx, "tmux", "swap-window", "-d",
		"-s", fmt.Sprintf("%s:%d", session, a),
		"-t", fmt.Sprintf("%s:%d", session, b))
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to swap windows %d and %d: %w, output: %s", a, b, err, strings.TrimSpace(string(output)))
	}
	return nil
}
