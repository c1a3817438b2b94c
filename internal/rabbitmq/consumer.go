package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"

	"invoicehub/internal/logger"
	"invoicehub/internal/models"

	"github.com/getsentry/sentry-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

var ErrDisconnected = errors.New("rabbitmq: delivery channel closed")

// Handler processes one consumed event.
type Handler interface {
	Dispatch(ctx context.Context, ev *models.InvoiceEvent) error
}

// Consumer reads invoice events from a durable queue bound to every invoice.*
// routing key.
type Consumer struct {
	ch       Channel
	exchange string
	queue    string
	handler  Handler
	log      zerolog.Logger
}

func NewConsumer(ch Channel, exchange, queue string, handler Handler) *Consumer {
	return &Consumer{
		ch:       ch,
		exchange: exchange,
		queue:    queue,
		handler:  handler,
		log:      logger.WithComponent("rabbitmq-consumer"),
	}
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	if err := declareExchange(c.ch, c.exchange); err != nil {
		return err
	}

	// Not exclusive: several workers share the queue and the broker spreads messages.
	queue, err := c.ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := c.ch.QueueBind(queue.Name, bindingKey, c.exchange, false, nil); err != nil {
		return err
	}

	deliveries, err := c.ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.log.Info().Str("queue", queue.Name).Msg("Starting RabbitMQ consumer loop")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrDisconnected
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var ev models.InvoiceEvent
	if err := json.Unmarshal(delivery.Body, &ev); err != nil {
		// A message we cannot decode will never succeed; drop it.
		c.captureErr(err)
		c.nack(delivery)
		return
	}

	if err := c.handler.Dispatch(ctx, &ev); err != nil {
		// No requeue: a failing send would loop forever.
		c.captureErr(err)
		c.nack(delivery)
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.captureErr(err)
	}
}

func (c *Consumer) nack(delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		c.captureErr(err)
	}
}

func (c *Consumer) captureErr(err error) {
	c.log.Error().Err(err).Msg("Failed to process invoice event")
	sentry.CaptureException(err)
}
