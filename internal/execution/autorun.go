package execution

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"treeline/internal/config"
	"treeline/internal/git"
	"treeline/internal/ports"
)

// AutoRunner launches every auto_run-flagged configured command for a single
// worktree. It is invoked synchronously right after a worktree is created and
// reused by the Refresher to restart individual missing commands.
type AutoRunner struct {
	cfg            *config.Manager
	deps           Deps
	nonInteractive bool
}

// NewAutoRunner creates an AutoRunner
func NewAutoRunner(cfg *config.Manager, deps Deps, nonInteractive bool) *AutoRunner {
	return &AutoRunner{cfg: cfg, deps: deps, nonInteractive: nonInteractive}
}

// RunAutoCommands runs all auto_run commands for the worktree. Commands whose
// config came from the bare string form never auto-run (strings cannot set
// the flag). Per-command failures are collected, never short-circuited.
func (r *AutoRunner) RunAutoCommands(ctx context.Context, wt git.Worktree) error {
	names := make([]string, 0, len(r.cfg.Project.Commands))
	for name, cc := range r.cfg.Project.Commands {
		if cc.AutoRun {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		if err := r.RunCommand(ctx, name, wt); err != nil {
			failed++
			r.deps.log().WithFields(map[string]interface{}{
				"command":  name,
				"worktree": wt.Name(),
			}).WithError(err).Error("autoRun command failed")
		}
	}

	return aggregateError(failed)
}

// RunCommand builds a single-context invocation for one named command and
// executes it under the mode resolved for that command.
func (r *AutoRunner) RunCommand(ctx context.Context, name string, wt git.Worktree) error {
	cc := r.cfg.Project.Commands[name]

	execCtx := Context{
		WorktreeName: wt.Name(),
		WorktreePath: wt.Path,
		IsMain:       wt.IsMain,
		CommandName:  name,
		Command:      cc.Command,
		Env:          r.worktreeEnv(wt),
		Ports:        r.allocatePorts(name, cc),
	}

	kind, err := r.resolveKind(cc)
	if err != nil {
		return err
	}

	mode, err := NewMode(kind, r.deps)
	if err != nil {
		return err
	}

	return mode.Execute(ctx, []Context{execCtx})
}

// resolveKind resolves a configured command's execution mode: its own mode,
// then the project default_mode, then the environment default.
func (r *AutoRunner) resolveKind(cc config.CommandConfig) (Kind, error) {
	name := cc.Mode
	if name == "" {
		name = r.cfg.Project.Settings.DefaultMode
	}
	if name == "" {
		return DefaultKind(r.nonInteractive), nil
	}
	return ParseKind(name)
}

// allocatePorts finds the command's ports inside the configured range
func (r *AutoRunner) allocatePorts(name string, cc config.CommandConfig) []int {
	return AllocateCommandPorts(r.deps.log(), name, r.cfg.Project.Settings.AvailablePorts, cc.NumPorts)
}

// AllocateCommandPorts finds numPorts free ports inside the configured range.
// Allocation failure degrades to a warning: the command still runs, just
// without port environment variables.
func AllocateCommandPorts(log *logrus.Entry, name, rangeSpec string, numPorts int) []int {
	if numPorts <= 0 {
		return nil
	}

	if rangeSpec == "" {
		log.WithField("command", name).Warn("num_ports set but no available_ports range configured")
		return nil
	}

	portRange, err := ports.ParseRange(rangeSpec)
	if err != nil {
		log.WithField("command", name).WithError(err).Warn("Invalid port range, running without ports")
		return nil
	}

	allocated, err := ports.FindAvailable(portRange.Start, portRange.End, numPorts)
	if err != nil {
		log.WithField("command", name).WithError(err).Warn("Port allocation failed, running without ports")
		return nil
	}

	return allocated
}

// worktreeEnv loads the optional per-worktree env overlay
func (r *AutoRunner) worktreeEnv(wt git.Worktree) map[string]string {
	overlay, err := config.LoadWorktreeOverlay(wt.Path)
	if err != nil {
		r.deps.log().WithField("worktree", wt.Name()).WithError(err).Warn("Failed to load worktree overlay")
		return map[string]string{}
	}
	return overlay.Env
}
