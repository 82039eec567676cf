package commands

import (
	"github.com/spf13/cobra"

	"treeline/internal/logger"
)

// RefreshCommands creates the refresh command
func RefreshCommands(deps Deps) []*cobra.Command {
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Restart missing auto-run commands across all worktrees",
		Long: `Refresh walks every worktree and restarts any auto-run command whose
tmux window has disappeared. Running it repeatedly is safe; commands that
are still alive are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := deps.runner(cmd.Context())
			if err != nil {
				return err
			}

			if err := runner.Refresh(cmd.Context()); err != nil {
				return err
			}
			logger.Info("Refresh complete")
			return nil
		},
	}

	return []*cobra.Command{refreshCmd}
}
