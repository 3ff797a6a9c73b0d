package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vytor/uptriv/internal/config"
	"github.com/vytor/uptriv/internal/logger"
)

type rootOptions struct {
	dbPath   string
	logLevel string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "uptriv",
		Short:        "Daily trivia puzzles with player analytics",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newPuzzleCmd(opts))
	cmd.AddCommand(newFriendsCmd(opts))
	return cmd
}

// loadConfig reads the environment, applies flag overrides and installs the default logger.
func (o *rootOptions) loadConfig() (config.Config, *logger.Logger, error) {
	cfg := config.Load()
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	log := logger.New(
		logger.WithOutput(os.Stderr),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	return cfg, log, nil
}
