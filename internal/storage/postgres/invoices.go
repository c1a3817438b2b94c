package postgres

import (
	"context"
	"time"

	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/storage"
	"invoicehub/internal/transport/dto"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoicesTable = "invoices"

var invoiceColumns = []string{
	"id", "user_id", "invoice_name", "invoice_number", "currency", "status", "date", "due_date",
	"from_name", "from_email", "from_address",
	"client_name", "client_email", "client_address",
	"item_description", "item_quantity", "item_rate", "total", "note",
	"created_at", "updated_at",
}

// InvoiceRepo implements storage.InvoiceRepository on PostgreSQL.
type InvoiceRepo struct {
	db Querier
}

func NewInvoiceRepo(db *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// WithTx returns a repository bound to tx.
func (r *InvoiceRepo) WithTx(tx pgx.Tx) storage.InvoiceRepository {
	return &InvoiceRepo{db: tx}
}

var _ storage.InvoiceRepository = (*InvoiceRepo)(nil)

func ownedBy(id, userID uuid.UUID) *sql.Predicate {
	return sql.And(sql.EQ("id", id), sql.EQ("user_id", userID))
}

func (r *InvoiceRepo) queryOne(ctx context.Context, query string, args []any, op string) (*models.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, op)
	}
	inv, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Invoice])
	if err != nil {
		return nil, mapError(err, op)
	}
	return inv, nil
}

// Create inserts inv. ID, CreatedAt and UpdatedAt are assigned here when zero.
func (r *InvoiceRepo) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now().UTC()
	query, args := builder().Insert(invoicesTable).
		Columns(invoiceColumns...).
		Values(
			inv.ID, inv.UserID, inv.InvoiceName, inv.InvoiceNumber, inv.Currency, inv.Status, inv.Date, inv.DueDate,
			inv.FromName, inv.FromEmail, inv.FromAddress,
			inv.ClientName, inv.ClientEmail, inv.ClientAddress,
			inv.ItemDescription, inv.ItemQuantity, inv.ItemRate, inv.Total, inv.Note,
			now, now,
		).
		Returning(invoiceColumns...).
		Query()

	created, err := r.queryOne(ctx, query, args, "create invoice")
	if err != nil {
		return nil, err
	}
	log := logger.WithComponent("invoice-repo")
	log.Debug().Str("invoice_id", created.ID.String()).Str("user_id", created.UserID.String()).Msg("Invoice created")
	return created, nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, error) {
	query, args := builder().Select(invoiceColumns...).
		From(sql.Table(invoicesTable)).
		Where(ownedBy(req.ID, req.UserId)).
		Query()
	return r.queryOne(ctx, query, args, "get invoice")
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, error) {
	query, args := builder().Select(invoiceColumns...).
		From(sql.Table(invoicesTable)).
		Where(ownedBy(req.ID, req.UserId)).
		ForUpdate().
		Query()
	return r.queryOne(ctx, query, args, "lock invoice")
}

func listPredicate(req *dto.ListInvoicesRequest) *sql.Predicate {
	p := sql.EQ("user_id", req.UserId)
	if req.Status != nil {
		p = sql.And(p, sql.EQ("status", *req.Status))
	}
	return p
}

// List returns a page of the owner's invoices, newest first.
func (r *InvoiceRepo) List(ctx context.Context, req *dto.ListInvoicesRequest) ([]models.Invoice, error) {
	query, args := builder().Select(invoiceColumns...).
		From(sql.Table(invoicesTable)).
		Where(listPredicate(req)).
		OrderBy(sql.Desc("created_at"), sql.Desc("invoice_number")).
		Limit(req.Limit).
		Offset(req.Offset).
		Query()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list invoices")
	}
	invoices, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Invoice])
	if err != nil {
		return nil, mapError(err, "scan invoices")
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return invoices, nil
}

func (r *InvoiceRepo) Count(ctx context.Context, req *dto.ListInvoicesRequest) (int, error) {
	query, args := builder().Select(sql.Count("*")).
		From(sql.Table(invoicesTable)).
		Where(listPredicate(req)).
		Query()

	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err, "count invoices")
	}
	return n, nil
}

// Update overwrites every editable column of the owner's invoice.
func (r *InvoiceRepo) Update(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	query, args := builder().Update(invoicesTable).
		Set("invoice_name", inv.InvoiceName).
		Set("invoice_number", inv.InvoiceNumber).
		Set("currency", inv.Currency).
		Set("status", inv.Status).
		Set("date", inv.Date).
		Set("due_date", inv.DueDate).
		Set("from_name", inv.FromName).
		Set("from_email", inv.FromEmail).
		Set("from_address", inv.FromAddress).
		Set("client_name", inv.ClientName).
		Set("client_email", inv.ClientEmail).
		Set("client_address", inv.ClientAddress).
		Set("item_description", inv.ItemDescription).
		Set("item_quantity", inv.ItemQuantity).
		Set("item_rate", inv.ItemRate).
		Set("total", inv.Total).
		Set("note", inv.Note).
		Set("updated_at", time.Now().UTC()).
		Where(ownedBy(inv.ID, inv.UserID)).
		Returning(invoiceColumns...).
		Query()
	return r.queryOne(ctx, query, args, "update invoice")
}

func (r *InvoiceRepo) UpdateStatus(ctx context.Context, req *dto.UpdateInvoiceStatusRequest) (*models.Invoice, error) {
	query, args := builder().Update(invoicesTable).
		Set("status", req.Status).
		Set("updated_at", time.Now().UTC()).
		Where(ownedBy(req.ID, req.UserId)).
		Returning(invoiceColumns...).
		Query()
	return r.queryOne(ctx, query, args, "update invoice status")
}

func (r *InvoiceRepo) Delete(ctx context.Context, req *dto.DeleteInvoiceRequest) error {
	query, args := builder().Delete(invoicesTable).
		Where(ownedBy(req.ID, req.UserId)).
		Query()

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "delete invoice")
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// StatusTotals counts and sums the owner's invoices per status and currency.
func (r *InvoiceRepo) StatusTotals(ctx context.Context, userID uuid.UUID) ([]storage.StatusTotal, error) {
	query, args := builder().Select(
		"status",
		"currency",
		sql.As(sql.Count("*"), "n"),
		sql.As(sql.Sum("total"), "sum"),
	).
		From(sql.Table(invoicesTable)).
		Where(sql.EQ("user_id", userID)).
		GroupBy("status", "currency").
		OrderBy("status", "currency").
		Query()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "summarize invoices")
	}
	totals, err := pgx.CollectRows(rows, pgx.RowToStructByName[storage.StatusTotal])
	if err != nil {
		return nil, mapError(err, "scan invoice totals")
	}
	return totals, nil
}

// PaidRevenueByDay sums PAID invoices created at or after since, per UTC day and
// currency, oldest day first.
func (r *InvoiceRepo) PaidRevenueByDay(ctx context.Context, userID uuid.UUID, since time.Time) ([]storage.DailyRevenue, error) {
	query, args := builder().Select(
		"date_trunc('day', created_at AT TIME ZONE 'UTC') AS day",
		"currency",
		sql.As(sql.Sum("total"), "sum"),
	).
		From(sql.Table(invoicesTable)).
		Where(sql.And(
			sql.EQ("user_id", userID),
			sql.EQ("status", models.InvoiceStatusPaid),
			sql.GTE("created_at", since),
		)).
		GroupBy("day", "currency").
		OrderBy("day", "currency").
		Query()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "paid revenue")
	}
	points, err := pgx.CollectRows(rows, pgx.RowToStructByName[storage.DailyRevenue])
	if err != nil {
		return nil, mapError(err, "scan paid revenue")
	}
	return points, nil
}
