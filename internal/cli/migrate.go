package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vytor/uptriv/internal/db"
	"github.com/vytor/uptriv/internal/logger"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := logger.NewContext(cmd.Context(), log)
			versions, err := db.Versions(ctx, database.DB)
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			log.Info("database at %s is up to date (%d migrations)", cfg.DBPath, len(versions))
			return nil
		},
	}
}
