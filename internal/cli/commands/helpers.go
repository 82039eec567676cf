// Package commands implements the treeline CLI commands.
package commands

import (
	"context"
	"os"

	"treeline/internal/config"
	"treeline/internal/db"
	"treeline/internal/errors"
	"treeline/internal/execution"
	"treeline/internal/git"
	"treeline/internal/logger"
	"treeline/internal/operations"
	"treeline/internal/tmux"
	"treeline/internal/xdg"
)

// Deps bundles the managers every command may need
type Deps struct {
	Config   *config.Manager
	Git      *git.Manager
	Tmux     *tmux.Manager
	Database *db.DB
}

// IsNonInteractive reports whether we are running under a CI system.
// Detection lives here so the execution layer can take it as a plain bool.
func IsNonInteractive() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// sessionName returns the tmux session commands run in
func sessionName(cfg *config.Manager) string {
	if name := cfg.Project.Project.Name; name != "" {
		return name
	}
	return "treeline"
}

// execDeps builds the execution dependencies from the CLI's managers
func (d Deps) execDeps() execution.Deps {
	return execution.Deps{
		Session:     sessionName(d.Config),
		Tmux:        d.Tmux,
		TmuxEnabled: d.Config.Project.Settings.Tmux,
		Log:         logger.WithField("component", "execution"),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LogDir:      xdg.LogsDir(),
	}
}

// repoPath resolves the main repository path from the working directory
func (d Deps) repoPath(ctx context.Context) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	repoPath, err := d.Git.MainRepoPath(ctx, cwd)
	if err != nil {
		return "", errors.NewWithHint(errors.ErrGitRepoNotFound,
			"not inside a git repository",
			"run treeline from a repository or one of its worktrees")
	}
	return repoPath, nil
}

// runner builds the command dispatcher
func (d Deps) runner(ctx context.Context) (*operations.Runner, error) {
	return d.runnerWithObserver(ctx, nil)
}

// runnerWithObserver builds a dispatcher whose executions report to obs
// (the server wires a hub-backed recorder here)
func (d Deps) runnerWithObserver(ctx context.Context, obs execution.Observer) (*operations.Runner, error) {
	repoPath, err := d.repoPath(ctx)
	if err != nil {
		return nil, err
	}
	execDeps := d.execDeps()
	execDeps.Observer = obs
	return operations.NewRunner(d.Config, d.Git, execDeps, repoPath, IsNonInteractive()), nil
}

// worktreeOps builds the worktree lifecycle operations
func (d Deps) worktreeOps(ctx context.Context) (*operations.WorktreeOps, error) {
	repoPath, err := d.repoPath(ctx)
	if err != nil {
		return nil, err
	}
	execDeps := d.execDeps()
	autorun := execution.NewAutoRunner(d.Config, execDeps, IsNonInteractive())
	return operations.NewWorktreeOps(d.Config, d.Git, d.Tmux, autorun, repoPath), nil
}

// runRepo returns the run history repository, or nil when the database is
// unavailable (history is best-effort)
func (d Deps) runRepo() *db.RunRepository {
	if d.Database == nil {
		return nil
	}
	return db.NewRunRepository(d.Database)
}
