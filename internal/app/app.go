// Package app bootstraps treeline: configuration, database, managers, CLI.
package app

import (
	"context"
	"fmt"

	"treeline/internal/cli"
	"treeline/internal/config"
	"treeline/internal/db"
	"treeline/internal/git"
	"treeline/internal/logger"
	"treeline/internal/tmux"
)

// App represents the main application
type App struct {
	Config *config.Manager
	Git    *git.Manager
	Tmux   *tmux.Manager
	DB     *db.DB
	CLI    *cli.Manager
}

// New creates a new application instance
func New() *App {
	return &App{}
}

// Run starts the application
func (a *App) Run(args []string) error {
	return a.RunWithContext(context.Background(), args)
}

// RunWithContext starts the application with a context for cancellation
func (a *App) RunWithContext(ctx context.Context, args []string) error {
	cfg := config.New()
	if err := cfg.Load(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.Config = cfg

	if cfg.Global != nil && cfg.Global.Log.Level != "" {
		logger.SetLevel(cfg.Global.Log.Level)
	}

	a.Git = git.New()
	a.Tmux = tmux.New()

	// Run history is best-effort: a broken database downgrades to a warning
	// and the CLI runs without it.
	database, err := db.New(db.DefaultConfig())
	if err != nil {
		logger.WithError(err).Warn("Run history unavailable")
	} else if err := database.Migrate(); err != nil {
		logger.WithError(err).Warn("Run history unavailable")
		database.Close()
		database = nil
	}
	a.DB = database
	if database != nil {
		defer database.Close()
	}

	a.CLI = cli.New(cfg)
	a.CLI.SetManagers(a.Git, a.Tmux, a.DB)

	if len(args) == 0 {
		return a.CLI.ExecuteWithContext(ctx, []string{"--help"})
	}
	return a.CLI.ExecuteWithContext(ctx, args)
}
