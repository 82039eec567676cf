package execution

import (
	"context"
	"sort"

	"treeline/internal/config"
	"treeline/internal/constants"
	"treeline/internal/git"
)

// Refresher is the reconciliation pass over existing worktrees: it restarts
// any auto_run command whose tmux window has gone missing, then normalizes
// window ordering. Running it twice with no external state change is a no-op
// the second time; the window-presence probe reflects live state, not a flag.
//
// Without tmux integration there is no liveness signal, so the presence loop
// is skipped entirely and refresh has no effect.
type Refresher struct {
	cfg     *config.Manager
	deps    Deps
	autorun *AutoRunner
}

// NewRefresher creates a Refresher
func NewRefresher(cfg *config.Manager, deps Deps, autorun *AutoRunner) *Refresher {
	return &Refresher{cfg: cfg, deps: deps, autorun: autorun}
}

// RefreshWorktrees reconciles all worktrees' auto_run commands, then re-sorts
// windows when auto_sort is enabled. Sort failures are cosmetic and only
// warned about; command start failures aggregate into the returned error.
func (r *Refresher) RefreshWorktrees(ctx context.Context, worktrees []git.Worktree) error {
	autoNames := r.autoRunNames()

	if !r.cfg.Project.Settings.Tmux || r.deps.Tmux == nil || !r.deps.Tmux.Available() {
		r.deps.log().Debug("tmux integration disabled, skipping refresh presence checks")
		return nil
	}
	if len(autoNames) == 0 {
		r.deps.log().Debug("no autoRun commands configured, nothing to refresh")
		return nil
	}

	failed := 0
	for _, wt := range worktrees {
		if wt.IsMain {
			continue
		}
		for _, name := range autoNames {
			windowName := wt.Name() + constants.WindowNameSeparator + name
			exists, err := r.deps.Tmux.WindowExists(ctx, r.deps.Session, windowName)
			if err != nil {
				r.deps.log().WithField("window", windowName).WithError(err).Warn("Failed to check window presence")
				continue
			}
			if exists {
				continue
			}

			r.deps.log().WithFields(map[string]interface{}{
				"command":  name,
				"worktree": wt.Name(),
			}).Infof("starting missing autoRun command: %s for %s", name, wt.Name())

			if err := r.autorun.RunCommand(ctx, name, wt); err != nil {
				failed++
				r.deps.log().WithField("command", name).WithError(err).Error("Failed to start autoRun command")
			}
		}
	}

	if r.cfg.Project.Settings.AutoSort {
		if err := r.deps.Tmux.SortWindows(ctx, r.deps.Session); err != nil {
			r.deps.log().WithError(err).Warn("Failed to sort windows")
		}
	}

	return aggregateError(failed)
}

// autoRunNames returns the auto_run commands that resolve to window mode.
// Only window commands leave a tmux window to probe; inline and background
// commands have no liveness signal and are launched once at worktree
// creation, never reconciled.
func (r *Refresher) autoRunNames() []string {
	names := make([]string, 0, len(r.cfg.Project.Commands))
	for name, cc := range r.cfg.Project.Commands {
		if !cc.AutoRun {
			continue
		}
		kind, err := r.autorun.resolveKind(cc)
		if err != nil || kind != KindWindow {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
