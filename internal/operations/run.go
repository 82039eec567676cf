package operations

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"treeline/internal/config"
	"treeline/internal/errors"
	"treeline/internal/execution"
	"treeline/internal/git"
	"treeline/internal/logger"
)

// Runner dispatches a parsed command across worktrees: it resolves the
// command, builds one execution context per target worktree, and hands the
// batch to the resolved mode.
type Runner struct {
	cfg            *config.Manager
	git            *git.Manager
	deps           execution.Deps
	repoPath       string
	nonInteractive bool
	log            *logrus.Entry
}

// NewRunner creates a command dispatcher
func NewRunner(cfg *config.Manager, gitMgr *git.Manager, deps execution.Deps, repoPath string, nonInteractive bool) *Runner {
	return &Runner{
		cfg:            cfg,
		git:            gitMgr,
		deps:           deps,
		repoPath:       repoPath,
		nonInteractive: nonInteractive,
		log:            logger.WithField("component", "runner"),
	}
}

// Run resolves args into a command and executes it across all non-main
// worktrees, or just the one named by worktreeFilter. The returned int is
// the process exit code (ExitMode's failure count; zero for other modes).
func (r *Runner) Run(ctx context.Context, args []string, modeOverride, worktreeFilter string, recorder *Recorder) (int, error) {
	parsed, err := execution.Parse(args, r.cfg.Project.Commands, execution.ParseOptions{
		ModeOverride:   modeOverride,
		DefaultMode:    r.cfg.Project.Settings.DefaultMode,
		NonInteractive: r.nonInteractive,
	})
	if err != nil {
		return 1, err
	}

	targets, err := r.targetWorktrees(ctx, worktreeFilter)
	if err != nil {
		return 1, err
	}
	if len(targets) == 0 {
		r.log.Info("No worktrees to run against")
		return 0, nil
	}

	contexts := make([]execution.Context, 0, len(targets))
	for _, wt := range targets {
		contexts = append(contexts, r.buildContext(parsed, wt))
	}

	deps := r.deps
	if recorder != nil {
		recorder.StartRun(ctx, parsed, len(contexts))
		deps.Observer = recorder
	}

	mode, err := execution.NewMode(parsed.Mode, deps)
	if err != nil {
		return 1, err
	}

	execErr := mode.Execute(ctx, contexts)

	if em, ok := mode.(*execution.ExitMode); ok {
		return em.ExitCode(), execErr
	}
	if execErr != nil {
		return 1, execErr
	}
	return 0, nil
}

// Refresh reconciles auto_run commands across all worktrees
func (r *Runner) Refresh(ctx context.Context) error {
	worktrees, err := r.git.ListWorktrees(ctx, r.repoPath)
	if err != nil {
		return errors.Wrap(errors.ErrGitWorktreeFailed, "failed to list worktrees", err)
	}

	autorun := execution.NewAutoRunner(r.cfg, r.deps, r.nonInteractive)
	refresher := execution.NewRefresher(r.cfg, r.deps, autorun)
	return refresher.RefreshWorktrees(ctx, worktrees)
}

// targetWorktrees selects the worktrees a run applies to. Main is excluded
// unless named explicitly via the filter.
func (r *Runner) targetWorktrees(ctx context.Context, filter string) ([]git.Worktree, error) {
	worktrees, err := r.git.ListWorktrees(ctx, r.repoPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrGitWorktreeFailed, "failed to list worktrees", err)
	}

	if filter != "" {
		for _, wt := range worktrees {
			if wt.Name() == filter {
				return []git.Worktree{wt}, nil
			}
		}
		return nil, errors.New(errors.ErrNotFound, fmt.Sprintf("worktree %q not found", filter))
	}

	targets := make([]git.Worktree, 0, len(worktrees))
	for _, wt := range worktrees {
		if wt.IsMain {
			continue
		}
		targets = append(targets, wt)
	}
	return targets, nil
}

// buildContext assembles the per-worktree execution context, including the
// env overlay and any ports the command's config asks for.
func (r *Runner) buildContext(parsed *execution.ParsedCommand, wt git.Worktree) execution.Context {
	env := map[string]string{}
	overlay, err := config.LoadWorktreeOverlay(wt.Path)
	if err != nil {
		r.log.WithField("worktree", wt.Name()).WithError(err).Warn("Failed to load worktree overlay")
	} else {
		env = overlay.Env
	}

	var allocated []int
	if parsed.Type == execution.Predefined {
		cc := r.cfg.Project.Commands[parsed.CommandName]
		allocated = execution.AllocateCommandPorts(
			r.log, parsed.CommandName, r.cfg.Project.Settings.AvailablePorts, cc.NumPorts)
	}

	return execution.Context{
		WorktreeName: wt.Name(),
		WorktreePath: wt.Path,
		IsMain:       wt.IsMain,
		CommandName:  parsed.CommandName,
		Command:      parsed.Command,
		Args:         parsed.Args,
		Env:          env,
		Ports:        allocated,
	}
}
