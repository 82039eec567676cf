// Package git wraps the git worktree operations treeline depends on.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Worktree represents a git worktree snapshot. Identity is Path; the list is
// re-fetched on every invocation and never cached across process lifetimes.
type Worktree struct {
	Path     string
	Branch   string
	Commit   string
	IsMain   bool
	IsLocked bool
}

// Name returns the worktree's short name, derived from its directory
func (w Worktree) Name() string {
	return filepath.Base(w.Path)
}

// Manager handles git operations including worktree management
type Manager struct{}

// New creates a new git manager
func New() *Manager {
	return &Manager{}
}

// ListWorktrees lists all worktrees attached to the repository at repoPath
func (m *Manager) ListWorktrees(ctx context.Context, repoPath string) ([]Worktree, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "worktree", "list", "--porcelain")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}

	return parseWorktreeList(string(output)), nil
}

// parseWorktreeList parses the output of git worktree list --porcelain
func parseWorktreeList(output string) []Worktree {
	var worktrees []Worktree
	lines := strings.Split(strings.TrimSpace(output), "\n")

	var current Worktree
	flush := func() {
		if current.Path != "" {
			worktrees = append(worktrees, current)
		}
		current = Worktree{}
	}

	for _, line := range lines {
		if line == "" {
			flush()
			continue
		}

		key := line
		value := ""
		if idx := strings.Index(line, " "); idx >= 0 {
			key = line[:idx]
			value = line[idx+1:]
		}

		switch key {
		case "worktree":
			current.Path = value
		case "HEAD":
			current.Commit = value
		case "branch":
			current.Branch = strings.TrimPrefix(value, "refs/heads/")
		case "locked":
			current.IsLocked = true
		}
	}
	flush()

	// Porcelain output lists the main worktree first
	if len(worktrees) > 0 {
		worktrees[0].IsMain = true
	}

	return worktrees
}

// CreateWorktree creates a new git worktree at path on the given branch,
// creating the branch from baseBranch when it does not exist yet.
func (m *Manager) CreateWorktree(ctx context.Context, repoPath, branch, baseBranch, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		return fmt.Errorf("worktree path already exists: %s", absPath)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	args := []string{"-C", repoPath, "worktree", "add"}
	if m.branchExists(repoPath, branch) {
		args = append(args, absPath, branch)
	} else {
		args = append(args, "-b", branch, absPath)
		if baseBranch != "" {
			args = append(args, baseBranch)
		}
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create worktree: %w, output: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// branchExists checks for a local branch via go-git reference lookup
func (m *Manager) branchExists(repoPath, branch string) bool {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return false
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	return err == nil
}

// RemoveWorktree removes a worktree. With force set, a failed git removal
// falls back to deleting the directory.
func (m *Manager) RemoveWorktree(ctx context.Context, repoPath, path string, force bool) error {
	args := []string{"-C", repoPath, "worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, "git", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if !force {
			return fmt.Errorf("failed to remove worktree: %w, output: %s", err, strings.TrimSpace(string(output)))
		}
		if removeErr := os.RemoveAll(path); removeErr != nil {
			return fmt.Errorf("failed to force remove worktree: git error: %w, fs error: %v", err, removeErr)
		}
	}
	return nil
}

// IsRepository checks if the path contains a git repository
func (m *Manager) IsRepository(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

// CurrentBranch returns the branch checked out at path
func (m *Manager) CurrentBranch(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("repository is in detached HEAD state")
	}

	return head.Name().Short(), nil
}

// HasUncommittedChanges checks if the worktree at path has uncommitted changes
func (m *Manager) HasUncommittedChanges(path string) (bool, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}

	return !status.IsClean(), nil
}

// MainRepoPath resolves the main repository path from anywhere inside a
// repository or one of its worktrees.
func (m *Manager) MainRepoPath(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "rev-parse", "--git-common-dir")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}

	commonDir := strings.TrimSpace(string(output))
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(path, commonDir)
	}
	return filepath.Dir(commonDir), nil
}
