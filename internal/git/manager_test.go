package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorktreeList(t *testing.T) {
	output := `worktree /home/user/myapp
HEAD 1234567890abcdef1234567890abcdef12345678
branch refs/heads/main

worktree /home/user/myapp-worktrees/feature-1
HEAD abcdef1234567890abcdef1234567890abcdef12
branch refs/heads/feature/feature-1

worktree /home/user/myapp-worktrees/locked-wt
HEAD fedcba0987654321fedcba0987654321fedcba09
branch refs/heads/feature/locked-wt
locked
`
	worktrees := parseWorktreeList(output)
	require.Len(t, worktrees, 3)

	main := worktrees[0]
	assert.Equal(t, "/home/user/myapp", main.Path)
	assert.Equal(t, "myapp", main.Name())
	assert.Equal(t, "main", main.Branch)
	assert.Equal(t, "1234567890abcdef1234567890abcdef12345678", main.Commit)
	assert.True(t, main.IsMain)
	assert.False(t, main.IsLocked)

	feature := worktrees[1]
	assert.Equal(t, "feature-1", feature.Name())
	assert.Equal(t, "feature/feature-1", feature.Branch)
	assert.False(t, feature.IsMain)

	locked := worktrees[2]
	assert.True(t, locked.IsLocked)
	assert.False(t, locked.IsMain)
}

func TestParseWorktreeListDetached(t *testing.T) {
	output := `worktree /home/user/myapp
HEAD 1234567890abcdef1234567890abcdef12345678
branch refs/heads/main

worktree /home/user/myapp-worktrees/detached
HEAD abcdef1234567890abcdef1234567890abcdef12
detached
`
	worktrees := parseWorktreeList(output)
	require.Len(t, worktrees, 2)
	assert.Empty(t, worktrees[1].Branch)
}

func TestParseWorktreeListEmpty(t *testing.T) {
	assert.Empty(t, parseWorktreeList(""))
}

func TestParseWorktreeListPathsWithSpaces(t *testing.T) {
	output := `worktree /home/user/my app
HEAD 1234567890abcdef1234567890abcdef12345678
branch refs/heads/main
`
	worktrees := parseWorktreeList(output)
	require.Len(t, worktrees, 1)
	assert.Equal(t, "/home/user/my app", worktrees[0].Path)
}

func TestWorktreeName(t *testing.T) {
	wt := Worktree{Path: "/home/user/wts/feature-42"}
	assert.Equal(t, "feature-42", wt.Name())
}
