package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables for the configured SQL driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == "memory" {
				logger.Info().Msg("memory driver has no schema, nothing to do")
				return nil
			}
			ctx := logger.WithContext(cmd.Context())
			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := migrate(ctx, cfg, st.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Str("driver", cfg.Database.Driver).Msg("schema up to date")
			return nil
		},
	}
}
