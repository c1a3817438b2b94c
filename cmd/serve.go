package cmd

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"invoicehub/internal/app"
	"invoicehub/internal/database"
	"invoicehub/internal/logger"
	"invoicehub/internal/server"

	"github.com/spf13/cobra"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the outbox relay",
	Example: `  # Serve with the configured database
  invoicehub serve

  # Apply pending migrations first
  invoicehub serve --migrate`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flush, err := app.InitSentry(cfg.Sentry)
	if err != nil {
		return err
	}
	defer flush()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if serveMigrate {
		applied, err := database.Migrate(ctx, application.DB)
		if err != nil {
			return err
		}
		log.Info().Strs("applied", applied).Msg("Migrations applied")
	}

	srv, err := server.NewServer(application)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		application.Relay.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err = <-errCh:
		log.Error().Err(err).Msg("Server stopped unexpectedly")
		stop()
	case <-ctx.Done():
		log.Info().Msg("Shutting down server and relay...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("Graceful shutdown failed")
		}
	}

	wg.Wait()
	log.Info().Msg("Application gracefully stopped")
	return err
}
