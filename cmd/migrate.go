package cmd

import (
	"fmt"

	"invoicehub/internal/database"
	"invoicehub/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("migrate")

		pool, err := database.NewConnectionPool(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := database.Migrate(cmd.Context(), pool)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			log.Info().Msg("Database is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
		}
		log.Info().Int("count", len(applied)).Msg("Migrations applied")
		return nil
	},
}
