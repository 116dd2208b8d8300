// Package cli wires the callcenter commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/sidoarjo/callcenter/internal/config"
	"github.com/sidoarjo/callcenter/internal/logging"
	"github.com/spf13/cobra"

	_ "github.com/sidoarjo/callcenter/internal/core/tables" // Register all tables
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "callcenter",
		Short:         "Call-center record dashboard",
		Long:          `Imports call-center CSV exports into PostgreSQL and serves statistics, a dashboard and search over them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newImportCommand(),
		newResetCommand(),
		newHashPasswordCommand(),
	)
	return root
}

// Execute runs the root command and returns the first error.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadEnvFile applies the file over the environment. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Overload(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no env file found, using environment variables", "path", path)
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	slog.Debug("loaded env file", "path", path)
	return nil
}

// loadConfig reads configuration and installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}
