package cmd

import (
	"github.com/Shashank-1177/SBFood/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()
		if err := config.Migrate(a.db); err != nil {
			return err
		}
		a.log.Info().Str("driver", a.cfg.DB.Driver).Msg("schema migrated")
		return nil
	},
}
