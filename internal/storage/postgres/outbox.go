package postgres

import (
	"context"
	"time"

	"invoicehub/internal/models"
	"invoicehub/internal/storage"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventsTable = "invoice_events"

var eventColumns = []string{
	"id", "invoice_id", "user_id", "type", "payload", "attempts", "last_error", "created_at", "dispatched_at",
}

// OutboxRepo implements storage.OutboxRepository on the invoice_events table.
type OutboxRepo struct {
	db Querier
}

func NewOutboxRepo(db *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{db: db}
}

func (r *OutboxRepo) WithTx(tx pgx.Tx) storage.OutboxRepository {
	return &OutboxRepo{db: tx}
}

var _ storage.OutboxRepository = (*OutboxRepo)(nil)

func (r *OutboxRepo) Enqueue(ctx context.Context, ev *models.InvoiceEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	query, args := builder().Insert(eventsTable).
		Columns("id", "invoice_id", "user_id", "type", "payload", "created_at").
		Values(ev.ID, ev.InvoiceID, ev.UserID, ev.Type, []byte(ev.Payload), ev.CreatedAt).
		Query()

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return mapError(err, "enqueue invoice event")
	}
	return nil
}

func (r *OutboxRepo) FetchPending(ctx context.Context, limit, maxAttempts int) ([]models.InvoiceEvent, error) {
	query, args := builder().Select(eventColumns...).
		From(sql.Table(eventsTable)).
		Where(sql.And(
			sql.IsNull("dispatched_at"),
			sql.LT("attempts", maxAttempts),
		)).
		OrderBy("created_at").
		Limit(limit).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		Query()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "fetch pending events")
	}
	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.InvoiceEvent])
	if err != nil {
		return nil, mapError(err, "scan pending events")
	}
	return events, nil
}

func (r *OutboxRepo) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	query, args := builder().Update(eventsTable).
		Set("dispatched_at", time.Now().UTC()).
		Add("attempts", 1).
		SetNull("last_error").
		Where(sql.EQ("id", id)).
		Query()
	return r.exec(ctx, query, args, "mark event dispatched")
}

func (r *OutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query, args := builder().Update(eventsTable).
		Add("attempts", 1).
		Set("last_error", reason).
		Where(sql.EQ("id", id)).
		Query()
	return r.exec(ctx, query, args, "mark event failed")
}

func (r *OutboxRepo) exec(ctx context.Context, query string, args []any, op string) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
