package execution

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"treeline/internal/errors"
)

// BackgroundMode spawns each context's subprocess fully detached: its own
// session, no controlling terminal, stdio redirected to a log file (or
// discarded). It returns as soon as all spawns are issued; intended for
// long-lived daemon-like commands. Failure is reported only when the spawn
// itself errors.
type BackgroundMode struct {
	deps Deps
}

// Execute issues all spawns and returns without waiting
func (m *BackgroundMode) Execute(ctx context.Context, contexts []Context) error {
	failed := 0
	for _, c := range contexts {
		err := m.spawn(c)
		m.deps.launched(c, LaunchResult{WorktreeName: c.WorktreeName, Err: err})
		if err != nil {
			failed++
			m.deps.log().WithField("worktree", c.WorktreeName).WithError(err).Error("Failed to start background command")
			continue
		}
		m.deps.log().WithField("worktree", c.WorktreeName).Infof("Started in background: %s", c.ShellCommand())
	}

	return aggregateError(failed)
}

// spawn starts one detached subprocess. The command deliberately does not use
// exec.CommandContext: a background process must outlive this invocation.
func (m *BackgroundMode) spawn(c Context) error {
	cmd := exec.Command("sh", "-c", c.ShellCommand())
	cmd.Dir = c.WorktreePath
	cmd.Env = c.Environ(os.Environ())
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	sink, err := m.logSink(c)
	if err != nil {
		m.deps.log().WithField("worktree", c.WorktreeName).WithError(err).Warn("Failed to open background log, discarding output")
		sink = nil
	}
	if sink != nil {
		cmd.Stdout = sink
		cmd.Stderr = sink
	}

	if err := cmd.Start(); err != nil {
		if sink != nil {
			sink.Close()
		}
		return errors.Wrap(errors.ErrSpawnFailed, "failed to spawn background command", err)
	}

	if sink != nil {
		// The child holds its own descriptor after Start
		sink.Close()
	}
	return cmd.Process.Release()
}

// logSink opens the per-context log file under the configured log directory
func (m *BackgroundMode) logSink(c Context) (*os.File, error) {
	if m.deps.LogDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(m.deps.LogDir, 0755); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-%s.log", c.WorktreeName, sanitizeFileName(c.commandLabel()))
	return os.OpenFile(filepath.Join(m.deps.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, name)
}
