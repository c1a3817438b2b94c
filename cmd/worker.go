package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"invoicehub/internal/app"
	"invoicehub/internal/logger"
	"invoicehub/internal/rabbitmq"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume invoice events from RabbitMQ and email clients",
	Long: `The worker binds a durable queue to the event exchange and sends the
created/updated templates for every invoice event published by the outbox relay.
It requires amqp.uri to be set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("worker")

		if cfg.AMQP.URI == "" {
			return errors.New("amqp.uri must be set to run the worker")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		flush, err := app.InitSentry(cfg.Sentry)
		if err != nil {
			return err
		}
		defer flush()

		client, err := rabbitmq.Dial(rabbitmq.Config{URI: cfg.AMQP.URI, Exchange: cfg.AMQP.Exchange, Queue: cfg.AMQP.Queue})
		if err != nil {
			return err
		}
		defer client.Close()

		log.Info().Str("queue", cfg.AMQP.Queue).Msg("Worker started")
		err = client.Consumer(app.NewNotifier(cfg)).Run(ctx)
		if ctx.Err() != nil {
			log.Info().Msg("Worker stopped")
			return nil
		}
		return err
	},
}
