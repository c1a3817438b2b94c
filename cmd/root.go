package cmd

import (
	"context"
	"fmt"
	"os"

	"invoicehub/config"
	"invoicehub/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "invoicehub",
	Short: "InvoiceHub - invoices, PDFs and client notifications",
	Long: `InvoiceHub serves the invoice API, applies database migrations,
renders invoice PDFs from the command line and runs the notification worker.

Configuration comes from .env, an optional config.yaml and INVOICEHUB_*
environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if err := logger.Setup(loaded.Log); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, renderCmd, workerCmd)
}
