package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"treeline/internal/logger"
)

// WorktreeCommands creates the worktree lifecycle commands
func WorktreeCommands(deps Deps) []*cobra.Command {
	commands := []*cobra.Command{}

	var baseBranch string
	addCmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Create a worktree and start its auto-run commands",
		Aliases: []string{"create"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := deps.worktreeOps(cmd.Context())
			if err != nil {
				return err
			}

			wt, err := ops.Create(cmd.Context(), args[0], baseBranch)
			if wt != nil {
				logger.WithFields(logger.Fields{
					"worktree": wt.Name(),
					"path":     wt.Path,
					"branch":   wt.Branch,
				}).Info("Worktree created")
			}
			return err
		},
	}
	addCmd.Flags().StringVarP(&baseBranch, "base", "b", "", "Base branch for the new worktree branch (default: configured default_branch)")
	commands = append(commands, addCmd)

	commands = append(commands, newWorktreeListCommand(deps))

	var force bool
	removeCmd := &cobra.Command{
		Use:     "remove <name>",
		Short:   "Remove a worktree and its tmux windows",
		Aliases: []string{"rm", "delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := deps.worktreeOps(cmd.Context())
			if err != nil {
				return err
			}
			return ops.Remove(cmd.Context(), args[0], force)
		},
	}
	removeCmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even with uncommitted changes")
	commands = append(commands, removeCmd)

	return commands
}

// ListCommands creates the top-level list command. It is a fresh instance of
// the worktree list command; cobra reparents a command added twice, so the
// two registrations cannot share one instance.
func ListCommands(deps Deps) []*cobra.Command {
	return []*cobra.Command{newWorktreeListCommand(deps)}
}

func newWorktreeListCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List worktrees",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := deps.worktreeOps(cmd.Context())
			if err != nil {
				return err
			}

			worktrees, err := ops.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBRANCH\tPATH\tMAIN")
			for _, wt := range worktrees {
				main := ""
				if wt.IsMain {
					main = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", wt.Name(), wt.Branch, wt.Path, main)
			}
			return w.Flush()
		},
	}
}
