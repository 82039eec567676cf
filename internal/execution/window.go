package execution

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"treeline/internal/errors"
)

// WindowMode opens one new terminal or tmux window per context and leaves it
// open after the command exits so failures remain visible. It never waits on
// subprocess completion: success certifies launch only, and a context fails
// only when window or session creation itself errors.
type WindowMode struct {
	deps Deps
}

// Execute fires one window per context and returns once all creations have
// been issued.
func (m *WindowMode) Execute(ctx context.Context, contexts []Context) error {
	if len(contexts) == 0 {
		return nil
	}

	useTmux := m.deps.TmuxEnabled && m.deps.Tmux != nil && m.deps.Tmux.Available()
	if useTmux {
		if err := m.deps.Tmux.EnsureSession(ctx, m.deps.Session, contexts[0].WorktreePath); err != nil {
			for _, c := range contexts {
				m.deps.launched(c, LaunchResult{WorktreeName: c.WorktreeName, Err: err})
			}
			return errors.Wrap(errors.ErrWindowCreate,
				fmt.Sprintf("%d command(s) failed", len(contexts)), err)
		}
	}

	failed := 0
	for _, c := range contexts {
		var err error
		if useTmux {
			err = m.deps.Tmux.NewWindow(ctx, m.deps.Session, c.WindowName(), c.WorktreePath, m.windowCommand(c))
		} else {
			err = m.launchTerminal(c)
		}

		m.deps.launched(c, LaunchResult{WorktreeName: c.WorktreeName, Err: err})
		if err != nil {
			failed++
			m.deps.log().WithField("worktree", c.WorktreeName).WithError(err).Error("Failed to open window")
			continue
		}
		m.deps.log().WithField("worktree", c.WorktreeName).Infof("Started %s", c.ShellCommand())
	}

	return aggregateError(failed)
}

// windowCommand wraps the context's command for a tmux window: exported
// overlay variables, the command itself, then an interactive shell re-entry
// so the window stays open after exit.
func (m *WindowMode) windowCommand(c Context) string {
	var b strings.Builder
	for _, kv := range c.overlayVars() {
		b.WriteString(kv[0])
		b.WriteString("=")
		b.WriteString(shellQuote(kv[1]))
		b.WriteString(" ")
	}
	b.WriteString("sh -c ")
	b.WriteString(shellQuote(c.ShellCommand() + "; exec ${SHELL:-sh}"))
	return b.String()
}

// launchTerminal opens a regular terminal emulator window when tmux
// integration is disabled or unavailable.
func (m *WindowMode) launchTerminal(c Context) error {
	term := os.Getenv("TERMINAL")
	if term == "" {
		term = "x-terminal-emulator"
	}
	if _, err := exec.LookPath(term); err != nil {
		return errors.NewWithHint(errors.ErrWindowCreate,
			"no terminal emulator available",
			"enable tmux integration or set $TERMINAL")
	}

	cmd := exec.Command(term, "-e", "sh", "-c", c.ShellCommand()+"; exec ${SHELL:-sh}")
	cmd.Dir = c.WorktreePath
	cmd.Env = c.Environ(os.Environ())

	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.ErrWindowCreate, "failed to open terminal window", err)
	}
	return cmd.Process.Release()
}
