package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookmarks-api/internal/bootstrap"
	"bookmarks-api/internal/core/database"
)

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, l, cleanup, err := o.load()
			if err != nil {
				return err
			}
			defer cleanup()

			db, err := bootstrap.OpenDB(cfg, l)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
