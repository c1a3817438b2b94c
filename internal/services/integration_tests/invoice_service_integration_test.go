package integration_tests

import (
	"context"
	"sync"
	"testing"

	"invoicehub/internal/models"
	"invoicehub/internal/outbox"
	"invoicehub/internal/render"
	"invoicehub/internal/services"
	"invoicehub/internal/storage/postgres"
	"invoicehub/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopReminders struct{}

func (noopReminders) SendReminder(context.Context, *models.Invoice) error { return nil }

func setupInvoiceServiceIntegrationTest(t *testing.T) (context.Context, services.InvoiceService, *pgxpool.Pool) {
	t.Helper()
	pool, _ := getTestClients(t)
	ctx := context.Background()
	cleanupTables(ctx, t, pool)

	svc := services.NewInvoiceService(
		postgres.NewTransactor(pool),
		postgres.NewInvoiceRepo(pool),
		noopReminders{},
		render.NewFPDFRenderer(),
	)
	return ctx, svc, pool
}

func createInput() dto.InvoiceInput {
	return dto.InvoiceInput{
		InvoiceName:     "Draft",
		InvoiceNumber:   1,
		Currency:        models.CurrencyUSD,
		Date:            "2025-01-05",
		DueDate:         15,
		ClientName:      "Acme",
		ClientEmail:     "billing@acme.test",
		ClientAddress:   "2 Road Runner Rd",
		ItemDescription: "Consulting",
		ItemQuantity:    decimal.NewFromInt(3),
		ItemRate:        decimal.RequireFromString("100.00"),
	}
}

func TestInvoiceService_Integration_Lifecycle(t *testing.T) {
	ctx, svc, pool := setupInvoiceServiceIntegrationTest(t)
	owner := createTestUser(t, ctx, pool, "owner@example.com")
	other := createTestUser(t, ctx, pool, "other@example.com")

	created, err := svc.CreateInvoice(ctx, &dto.CreateInvoiceRequest{InvoiceInput: createInput(), UserId: owner.ID})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("300").Equal(created.Total))
	assert.Equal(t, "Test User", created.FromName)
	assert.Equal(t, models.InvoiceStatusPending, created.Status)

	// Another owner cannot see it.
	_, err = svc.GetInvoiceByID(ctx, &dto.GetInvoiceByIDRequest{ID: created.ID, UserId: other.ID})
	assert.ErrorIs(t, err, services.ErrNotFound)

	fetched, err := svc.GetInvoiceByID(ctx, &dto.GetInvoiceByIDRequest{ID: created.ID, UserId: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, created.ClientEmail, fetched.ClientEmail)

	list, total, err := svc.ListInvoices(ctx, &dto.ListInvoicesRequest{Limit: 10, UserId: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	for i := 0; i < 2; i++ {
		paid, err := svc.MarkAsPaid(ctx, &dto.MarkInvoicePaidRequest{ID: created.ID, UserId: owner.ID})
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusPaid, paid.Status)
	}

	in := createInput()
	in.Status = models.InvoiceStatusPending
	_, err = svc.UpdateInvoice(ctx, &dto.UpdateInvoiceRequest{InvoiceInput: in, ID: created.ID, UserId: owner.ID})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, pdf, err := svc.RenderPDF(ctx, &dto.GetInvoiceByIDRequest{ID: created.ID, UserId: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(pdf[:5]))

	err = svc.DeleteInvoice(ctx, &dto.DeleteInvoiceRequest{ID: created.ID, UserId: other.ID})
	assert.ErrorIs(t, err, services.ErrNotFound)
	require.NoError(t, svc.DeleteInvoice(ctx, &dto.DeleteInvoiceRequest{ID: created.ID, UserId: owner.ID}))
}

func TestInvoiceService_Integration_OutboxRelay(t *testing.T) {
	ctx, svc, pool := setupInvoiceServiceIntegrationTest(t)
	owner := createTestUser(t, ctx, pool, "relay@example.com")

	created, err := svc.CreateInvoice(ctx, &dto.CreateInvoiceRequest{InvoiceInput: createInput(), UserId: owner.ID})
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []uuid.UUID
	relay := outbox.NewRelay(postgres.NewTransactor(pool), outbox.DispatcherFunc(func(_ context.Context, ev *models.InvoiceEvent) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.InvoiceID)
		return nil
	}), outbox.Config{BatchSize: 10, MaxAttempts: 3})

	n, err := relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{created.ID}, seen)

	// Dispatched events are not picked up again.
	n, err = relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
