package main

import (
	"github.com/spf13/cobra"

	"github.com/maxviazov/directory-service/migrations"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the configured driver",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, appLogger, err := bootstrap()
		if err != nil {
			return err
		}
		if !migrateDown {
			if err := migrate(cfg); err != nil {
				return err
			}
			appLogger.Info().Str("driver", cfg.Storage.Driver).Msg("✅ migrations applied")
			return nil
		}

		db, err := openSQL(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrations.Down(db, cfg.Storage.Driver); err != nil {
			return err
		}
		appLogger.Info().Str("driver", cfg.Storage.Driver).Msg("migrations rolled back")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back every migration instead")
}
