package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"invoicehub/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublishChannel is the part of *amqp.Channel the publisher needs.
type PublishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends invoice events to the exchange, routed by event type. It is the
// outbox dispatcher when a broker is configured.
type Publisher struct {
	ch       PublishChannel
	exchange string
}

func NewPublisher(ch PublishChannel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) Dispatch(ctx context.Context, ev *models.InvoiceEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.ID, err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, string(ev.Type), false, false, amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID.String(),
		Timestamp:    ev.CreatedAt,
		Type:         string(ev.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event %s: %w", ev.ID, err)
	}
	return nil
}
