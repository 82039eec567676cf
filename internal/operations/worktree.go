// Package operations orchestrates the worktree lifecycle and command
// dispatch on top of the git, tmux and execution collaborators.
package operations

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"treeline/internal/config"
	"treeline/internal/constants"
	"treeline/internal/errors"
	"treeline/internal/execution"
	"treeline/internal/git"
	"treeline/internal/logger"
	"treeline/internal/tmux"
	"treeline/internal/validation"
)

// WorktreeOps implements the worktree lifecycle: create a worktree and
// bootstrap its auto_run commands, list, and remove with cleanup.
type WorktreeOps struct {
	cfg      *config.Manager
	git      *git.Manager
	tmux     *tmux.Manager
	autorun  *execution.AutoRunner
	repoPath string
	log      *logrus.Entry
}

// NewWorktreeOps creates worktree operations rooted at the main repository
func NewWorktreeOps(cfg *config.Manager, gitMgr *git.Manager, tmuxMgr *tmux.Manager, autorun *execution.AutoRunner, repoPath string) *WorktreeOps {
	return &WorktreeOps{
		cfg:      cfg,
		git:      gitMgr,
		tmux:     tmuxMgr,
		autorun:  autorun,
		repoPath: repoPath,
		log:      logger.WithField("component", "worktree"),
	}
}

// worktreePath resolves where a named worktree lives on disk
func (o *WorktreeOps) worktreePath(name string) string {
	dir := o.cfg.Project.Settings.WorktreeDir
	if dir == "" {
		dir = "../" + filepath.Base(o.repoPath) + "-worktrees"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(o.repoPath, dir)
	}
	return filepath.Join(dir, name)
}

// Create makes a new git worktree and runs its auto_run commands. The
// worktree survives auto_run failures; those surface in the returned error.
func (o *WorktreeOps) Create(ctx context.Context, name, baseBranch string) (*git.Worktree, error) {
	if err := validation.ValidateWorktreeName(name); err != nil {
		return nil, errors.Wrap(errors.ErrValidationFailed, "invalid worktree name", err)
	}

	branch := o.cfg.Project.Settings.BranchPrefix + name
	if err := validation.ValidateBranchName(branch); err != nil {
		return nil, errors.Wrap(errors.ErrValidationFailed, "invalid branch name", err)
	}

	if baseBranch == "" {
		baseBranch = o.cfg.Project.Settings.DefaultBranch
	}

	path := o.worktreePath(name)
	o.log.WithFields(logger.Fields{
		"name":   name,
		"branch": branch,
		"path":   path,
	}).Info("Creating worktree")

	if err := o.git.CreateWorktree(ctx, o.repoPath, branch, baseBranch, path); err != nil {
		return nil, errors.Wrap(errors.ErrGitWorktreeFailed, fmt.Sprintf("failed to create worktree %q", name), err)
	}

	wt := git.Worktree{Path: path, Branch: branch}

	if err := o.autorun.RunAutoCommands(ctx, wt); err != nil {
		o.log.WithField("worktree", name).WithError(err).Warn("Some autoRun commands failed")
		return &wt, err
	}

	return &wt, nil
}

// List returns all worktrees of the repository
func (o *WorktreeOps) List(ctx context.Context) ([]git.Worktree, error) {
	worktrees, err := o.git.ListWorktrees(ctx, o.repoPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrGitWorktreeFailed, "failed to list worktrees", err)
	}
	return worktrees, nil
}

// Remove deletes a worktree by name. Without force, uncommitted changes
// block removal. Configured command windows in tmux are killed best-effort.
func (o *WorktreeOps) Remove(ctx context.Context, name string, force bool) error {
	worktrees, err := o.List(ctx)
	if err != nil {
		return err
	}

	var target *git.Worktree
	for i := range worktrees {
		if worktrees[i].Name() == name {
			target = &worktrees[i]
			break
		}
	}
	if target == nil {
		return errors.New(errors.ErrNotFound, fmt.Sprintf("worktree %q not found", name))
	}
	if target.IsMain {
		return errors.NewWithHint(errors.ErrInvalidInput,
			"cannot remove the main worktree",
			"the main checkout is managed by git itself")
	}

	if !force {
		dirty, err := o.git.HasUncommittedChanges(target.Path)
		if err != nil {
			o.log.WithField("worktree", name).WithError(err).Warn("Failed to check for uncommitted changes")
		} else if dirty {
			return errors.NewWithHint(errors.ErrGitUncommitted,
				fmt.Sprintf("worktree %q has uncommitted changes", name),
				"commit or stash them, or pass --force")
		}
	}

	o.killCommandWindows(ctx, name)

	if err := o.git.RemoveWorktree(ctx, o.repoPath, target.Path, force); err != nil {
		return errors.Wrap(errors.ErrGitWorktreeFailed, fmt.Sprintf("failed to remove worktree %q", name), err)
	}

	o.log.WithField("worktree", name).Info("Removed worktree")
	return nil
}

// killCommandWindows tears down any tmux windows this worktree's commands own
func (o *WorktreeOps) killCommandWindows(ctx context.Context, name string) {
	if !o.cfg.Project.Settings.Tmux || o.tmux == nil || !o.tmux.Available() {
		return
	}

	session := o.cfg.Project.Project.Name
	if session == "" {
		session = "treeline"
	}
	for _, cmdName := range o.cfg.CommandNames() {
		windowName := name + constants.WindowNameSeparator + cmdName
		exists, err := o.tmux.WindowExists(ctx, session, windowName)
		if err != nil || !exists {
			continue
		}
		if err := o.tmux.KillWindow(ctx, session, windowName); err != nil {
			o.log.WithField("window", windowName).WithError(err).Warn("Failed to kill window")
		}
	}
}
