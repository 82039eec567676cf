// Package cli wires the cobra command tree to the underlying managers.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"treeline/internal/cli/commands"
	"treeline/internal/config"
	"treeline/internal/db"
	"treeline/internal/git"
	"treeline/internal/tmux"
)

// Manager handles CLI operations
type Manager struct {
	config   *config.Manager
	git      *git.Manager
	tmux     *tmux.Manager
	database *db.DB
	rootCmd  *cobra.Command
}

// New creates a new CLI manager
func New(cfg *config.Manager) *Manager {
	m := &Manager{
		config: cfg,
	}
	m.rootCmd = createRootCommand()
	return m
}

// SetManagers sets the git, tmux, and database managers and builds the command tree
func (m *Manager) SetManagers(gitMgr *git.Manager, tmuxMgr *tmux.Manager, database *db.DB) {
	m.git = gitMgr
	m.tmux = tmuxMgr
	m.database = database
	m.setupCommands()
}

// Execute executes the CLI with the given arguments
func (m *Manager) Execute(args []string) error {
	return m.ExecuteWithContext(context.Background(), args)
}

// ExecuteWithContext executes the CLI with the given arguments and context
func (m *Manager) ExecuteWithContext(ctx context.Context, args []string) error {
	m.rootCmd.SetArgs(args)
	return m.rootCmd.ExecuteContext(ctx)
}

// setupCommands sets up all CLI commands
func (m *Manager) setupCommands() {
	deps := commands.Deps{
		Config:   m.config,
		Git:      m.git,
		Tmux:     m.tmux,
		Database: m.database,
	}

	for _, cmd := range commands.InitCommands(m.config) {
		m.rootCmd.AddCommand(cmd)
	}

	for _, cmd := range commands.RunCommands(deps) {
		m.rootCmd.AddCommand(cmd)
	}

	worktreeCmd := &cobra.Command{
		Use:     "worktree",
		Short:   "Worktree management commands",
		Aliases: []string{"wt"},
	}
	for _, cmd := range commands.WorktreeCommands(deps) {
		worktreeCmd.AddCommand(cmd)
	}
	m.rootCmd.AddCommand(worktreeCmd)

	// list is common enough to deserve a top-level alias
	for _, cmd := range commands.ListCommands(deps) {
		m.rootCmd.AddCommand(cmd)
	}

	for _, cmd := range commands.RefreshCommands(deps) {
		m.rootCmd.AddCommand(cmd)
	}

	for _, cmd := range commands.RunsCommands(deps) {
		m.rootCmd.AddCommand(cmd)
	}

	for _, cmd := range commands.ServerCommands(deps) {
		m.rootCmd.AddCommand(cmd)
	}
}
