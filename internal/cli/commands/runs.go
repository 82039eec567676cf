package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// RunsCommands creates the run history command
func RunsCommands(deps Deps) []*cobra.Command {
	var limit int

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent command runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := deps.runRepo()
			if repo == nil {
				return fmt.Errorf("run history is not available (database failed to open)")
			}

			runs, err := repo.ListRunsWithContexts(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tCOMMAND\tMODE\tWORKTREE\tOUTCOME\tEXIT")
			for _, run := range runs {
				label := run.Run.CommandName
				if label == "" {
					label = run.Run.Command
				}
				if len(run.Contexts) == 0 {
					fmt.Fprintf(w, "%s\t%s\t%s\t-\t-\t-\n",
						run.Run.StartedAt.Format("2006-01-02 15:04:05"), label, run.Run.Mode)
					continue
				}
				for _, rc := range run.Contexts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
						run.Run.StartedAt.Format("2006-01-02 15:04:05"),
						label, run.Run.Mode, rc.WorktreeName, rc.Outcome, rc.ExitCode)
				}
			}
			return w.Flush()
		},
	}
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")

	return []*cobra.Command{runsCmd}
}
