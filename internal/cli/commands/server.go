package commands

import (
	"github.com/spf13/cobra"

	"treeline/internal/operations"
	"treeline/internal/server"
)

// ServerCommands creates the server command
func ServerCommands(deps Deps) []*cobra.Command {
	var port int
	var host string

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API server",
		Long: `Start the treeline HTTP API. The API exposes worktrees, run history and
a refresh endpoint, plus a websocket stream of run lifecycle events at /api/ws.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hub := server.NewHub()
			// Server-initiated runs record history and stream events to
			// websocket clients
			recorder := operations.NewRecorder(deps.runRepo(), hub)

			runner, err := deps.runnerWithObserver(ctx, recorder)
			if err != nil {
				return err
			}
			worktreeOps, err := deps.worktreeOps(ctx)
			if err != nil {
				return err
			}

			cfg := server.DefaultConfig()
			if deps.Config.Global != nil && deps.Config.Global.Server.Port != 0 {
				cfg.Port = deps.Config.Global.Server.Port
			}
			if port != 0 {
				cfg.Port = port
			}
			if host != "" {
				cfg.Host = host
			}

			srv := server.New(cfg, deps.Config, runner, worktreeOps, deps.runRepo(), deps.Database, hub)
			return srv.Start(ctx)
		},
	}
	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: global config)")
	serverCmd.Flags().StringVar(&host, "host", "", "Host to bind (default: localhost)")

	return []*cobra.Command{serverCmd}
}
