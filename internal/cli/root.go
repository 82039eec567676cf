package cli

import (
	"github.com/spf13/cobra"
)

// createRootCommand creates the root command with global flags
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treeline",
		Short: "Parallel feature development with git worktrees and tmux",
		Long: `treeline manages git worktrees for parallel feature development. Each
worktree gets its own branch, its configured commands run in dedicated tmux
windows (or inline, in the background, or CI-style), and a refresh pass
restarts anything that died.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	return rootCmd
}
