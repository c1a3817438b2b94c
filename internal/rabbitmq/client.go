// Package rabbitmq carries invoice events over an AMQP topic exchange. The outbox
// relay publishes, the worker consumes and hands events to the notifier.
package rabbitmq

import (
	"fmt"
	"time"

	"invoicehub/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	contentTypeJSON = "application/json"
	exchangeKind    = "topic"
	bindingKey      = "invoice.#"
)

// Channel is the subset of *amqp.Channel used by the publisher and consumer.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

type Config struct {
	URI      string
	Exchange string
	Queue    string
}

// Client owns one connection with separate channels for publishing and consuming,
// so consumers are not throttled by flow control on the publishing side.
type Client struct {
	conn           *amqp.Connection
	publishChannel *amqp.Channel
	consumeChannel *amqp.Channel
	cfg            Config
}

// Dial connects to the broker and declares the event exchange.
func Dial(cfg Config) (*Client, error) {
	log := logger.WithComponent("rabbitmq")

	conn, err := amqp.DialConfig(cfg.URI, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(3 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	publishChannel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	consumeChannel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open consume channel: %w", err)
	}

	if err := declareExchange(publishChannel, cfg.Exchange); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info().Str("exchange", cfg.Exchange).Msg("Connected to RabbitMQ")
	return &Client{conn: conn, publishChannel: publishChannel, consumeChannel: consumeChannel, cfg: cfg}, nil
}

// Publisher returns a publisher on the client's publish channel.
func (c *Client) Publisher() *Publisher {
	return NewPublisher(c.publishChannel, c.cfg.Exchange)
}

// Consumer returns a consumer on the client's consume channel.
func (c *Client) Consumer(handler Handler) *Consumer {
	return NewConsumer(c.consumeChannel, c.cfg.Exchange, c.cfg.Queue, handler)
}

// Close closes both channels and the connection.
func (c *Client) Close() error {
	c.consumeChannel.Close()
	c.publishChannel.Close()
	return c.conn.Close()
}

func declareExchange(ch Channel, name string) error {
	// Durable and not auto-deleted: survives broker restarts with no bindings left.
	if err := ch.ExchangeDeclare(name, exchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}
