// Package outbox relays invoice events written alongside invoice changes to a
// Dispatcher after the writing transaction commits.
package outbox

import (
	"context"
	"fmt"
	"time"

	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/storage"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Dispatcher delivers one event. An error leaves the event pending for the next poll.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *models.InvoiceEvent) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, ev *models.InvoiceEvent) error

func (f DispatcherFunc) Dispatch(ctx context.Context, ev *models.InvoiceEvent) error { return f(ctx, ev) }

type Config struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Relay polls the outbox table and hands pending events to a Dispatcher.
// Several relays may run against one database; row locks keep them apart.
type Relay struct {
	db         storage.Transactor
	dispatcher Dispatcher
	cfg        Config
	log        zerolog.Logger
}

func NewRelay(db storage.Transactor, dispatcher Dispatcher, cfg Config) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Relay{db: db, dispatcher: dispatcher, cfg: cfg, log: logger.WithComponent("outbox-relay")}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.log.Info().Dur("interval", r.cfg.Interval).Int("batch_size", r.cfg.BatchSize).Msg("Outbox relay started")
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		for {
			n, err := r.ProcessBatch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.log.Error().Err(err).Msg("Outbox poll failed")
				}
				break
			}
			// A full batch suggests more is waiting.
			if n < r.cfg.BatchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			r.log.Info().Msg("Outbox relay stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch dispatches one batch of pending events inside a transaction and
// returns how many events it looked at.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin outbox transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	repo := tx.Outbox()
	events, err := repo.FetchPending(ctx, r.cfg.BatchSize, r.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}

	for i := range events {
		ev := &events[i]
		log := r.log.With().Str("event_id", ev.ID.String()).Str("type", string(ev.Type)).Logger()

		if derr := r.dispatcher.Dispatch(ctx, ev); derr != nil {
			if err := repo.MarkFailed(ctx, ev.ID, derr.Error()); err != nil {
				return 0, fmt.Errorf("record failed event %s: %w", ev.ID, err)
			}
			if ev.Attempts+1 >= r.cfg.MaxAttempts {
				log.Error().Err(derr).Int("attempts", ev.Attempts+1).Msg("Giving up on invoice event")
				sentry.CaptureException(fmt.Errorf("invoice event %s undeliverable: %w", ev.ID, derr))
			} else {
				log.Warn().Err(derr).Int("attempts", ev.Attempts+1).Msg("Invoice event dispatch failed")
			}
			continue
		}

		if err := repo.MarkDispatched(ctx, ev.ID); err != nil {
			return 0, fmt.Errorf("mark event %s dispatched: %w", ev.ID, err)
		}
		log.Debug().Msg("Invoice event dispatched")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit outbox transaction: %w", err)
	}
	return len(events), nil
}
