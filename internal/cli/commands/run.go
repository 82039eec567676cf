package commands

import (
	"github.com/spf13/cobra"

	"treeline/internal/errors"
	"treeline/internal/operations"
)

// RunCommands creates the run command
func RunCommands(deps Deps) []*cobra.Command {
	var mode string
	var worktree string

	runCmd := &cobra.Command{
		Use:   "run [command] | run -- <shell command>",
		Short: "Run a command across worktrees",
		Long: `Run a configured command by name, or an arbitrary command after --,
in every worktree (or just the one named by --worktree).

Execution mode precedence: --mode flag, then the command's configured mode,
then the project default_mode, then window (exit under CI).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Cobra strips the -- separator; rebuild it so predefined vs
			// inline resolution sees the original shape.
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				rebuilt := make([]string, 0, len(args)+1)
				rebuilt = append(rebuilt, args[:dash]...)
				rebuilt = append(rebuilt, "--")
				rebuilt = append(rebuilt, args[dash:]...)
				args = rebuilt
			}

			runner, err := deps.runner(cmd.Context())
			if err != nil {
				return err
			}

			recorder := operations.NewRecorder(deps.runRepo(), nil)
			code, err := runner.Run(cmd.Context(), args, mode, worktree, recorder)
			if err != nil {
				return err
			}
			if code != 0 {
				// Exiting here would skip the deferred database close;
				// main translates this into the process exit code.
				return &errors.ExitError{Code: code}
			}
			return nil
		},
	}
	runCmd.Flags().StringVarP(&mode, "mode", "m", "", "Execution mode: window, inline, background, exit")
	runCmd.Flags().StringVarP(&worktree, "worktree", "w", "", "Run only in the named worktree")

	return []*cobra.Command{runCmd}
}
