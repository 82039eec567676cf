package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"treeline/internal/config"
	"treeline/internal/constants"
	"treeline/internal/logger"
)

// InitCommands creates the init command
func InitCommands(cfg *config.Manager) []*cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example treeline.toml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			path := filepath.Join(cwd, constants.ProjectConfigFile)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", constants.ProjectConfigFile)
			}

			if err := config.CreateDefaultProjectConfig(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			logger.WithField("path", path).Info("Created project configuration")
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	return []*cobra.Command{initCmd}
}
