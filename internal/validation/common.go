// Package validation provides input validation helpers shared by the CLI
// and server layers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var worktreeNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateWorktreeName checks that a name is safe to use as both a directory
// name and a tmux window name prefix.
func ValidateWorktreeName(name string) error {
	if name == "" {
		return fmt.Errorf("worktree name cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("worktree name too long (max 100 characters)")
	}
	if !worktreeNameRegex.MatchString(name) {
		return fmt.Errorf("invalid worktree name %q: must start with a letter or digit and contain only letters, digits, hyphens, underscores, and dots", name)
	}
	return nil
}

// ValidateBranchName performs a light check against obviously invalid git
// branch names; git itself is the final authority.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	for _, bad := range []string{"..", "~", "^", ":", " ", "\\"} {
		if strings.Contains(name, bad) {
			return fmt.Errorf("invalid branch name %q: must not contain %q", name, bad)
		}
	}
	return nil
}
