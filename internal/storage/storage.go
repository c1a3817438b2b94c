package storage

import (
	"context"
	"time"

	"invoicehub/internal/models"
	"invoicehub/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	GetByID(ctx context.Context, req *dto.GetUserByIdRequest) (*models.User, error)
	GetByEmail(ctx context.Context, req *dto.GetUserByEmailRequest) (*models.User, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, req *dto.OnboardRequest) (*models.User, error)
}

// InvoiceRepository defines the interface for invoice data operations. Every lookup
// matches both the invoice id and the owner; a mismatch is ErrNotFound.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	GetByID(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, error)
	// GetForUpdate is GetByID with a row lock; only meaningful inside a transaction.
	GetForUpdate(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, error)
	List(ctx context.Context, req *dto.ListInvoicesRequest) ([]models.Invoice, error)
	Count(ctx context.Context, req *dto.ListInvoicesRequest) (int, error)
	Update(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateInvoiceStatusRequest) (*models.Invoice, error)
	Delete(ctx context.Context, req *dto.DeleteInvoiceRequest) error
	StatusTotals(ctx context.Context, userID uuid.UUID) ([]StatusTotal, error)
	PaidRevenueByDay(ctx context.Context, userID uuid.UUID, since time.Time) ([]DailyRevenue, error)
}

// OutboxRepository stores invoice events until they are dispatched.
type OutboxRepository interface {
	Enqueue(ctx context.Context, ev *models.InvoiceEvent) error
	// FetchPending locks up to limit undispatched events with fewer than maxAttempts
	// attempts, oldest first, skipping rows locked by another relay.
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]models.InvoiceEvent, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Transactor starts transactions whose repositories share one database transaction.
type Transactor interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an open transaction. Rollback after Commit is a no-op, so it can be deferred.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Users() UserRepository
	Invoices() InvoiceRepository
	Outbox() OutboxRepository
}

// StatusTotal aggregates one owner's invoices by status and currency.
type StatusTotal struct {
	Status   models.InvoiceStatus `db:"status"`
	Currency models.Currency      `db:"currency"`
	Count    int                  `db:"n"`
	Sum      decimal.Decimal      `db:"sum"`
}

// DailyRevenue is the paid total for one UTC day in one currency.
type DailyRevenue struct {
	Day      time.Time       `db:"day"`
	Currency models.Currency `db:"currency"`
	Sum      decimal.Decimal `db:"sum"`
}
