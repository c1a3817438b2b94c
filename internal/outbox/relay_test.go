package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	mock_storage "invoicehub/internal/mocks"
	"invoicehub/internal/models"
	"invoicehub/internal/outbox"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRelay(t *testing.T, d outbox.Dispatcher) (*outbox.Relay, *mock_storage.MockTransactor, *mock_storage.MockTx, *mock_storage.MockOutboxRepository) {
	ctrl := gomock.NewController(t)
	db := mock_storage.NewMockTransactor(ctrl)
	tx := mock_storage.NewMockTx(ctrl)
	repo := mock_storage.NewMockOutboxRepository(ctrl)
	relay := outbox.NewRelay(db, d, outbox.Config{Interval: 10 * time.Millisecond, BatchSize: 10, MaxAttempts: 3})
	return relay, db, tx, repo
}

func TestRelay_ProcessBatch(t *testing.T) {
	ok := models.InvoiceEvent{ID: uuid.New(), Type: models.InvoiceEventCreated}
	bad := models.InvoiceEvent{ID: uuid.New(), Type: models.InvoiceEventUpdated, Attempts: 2}

	dispatchErr := errors.New("smtp down")
	var dispatched []uuid.UUID
	d := outbox.DispatcherFunc(func(_ context.Context, ev *models.InvoiceEvent) error {
		dispatched = append(dispatched, ev.ID)
		if ev.ID == bad.ID {
			return dispatchErr
		}
		return nil
	})

	relay, db, tx, repo := setupRelay(t, d)
	ctx := context.Background()

	db.EXPECT().Begin(ctx).Return(tx, nil)
	tx.EXPECT().Outbox().Return(repo)
	tx.EXPECT().Rollback(ctx).Return(nil)
	repo.EXPECT().FetchPending(ctx, 10, 3).Return([]models.InvoiceEvent{ok, bad}, nil)
	repo.EXPECT().MarkDispatched(ctx, ok.ID).Return(nil)
	repo.EXPECT().MarkFailed(ctx, bad.ID, "smtp down").Return(nil)
	tx.EXPECT().Commit(ctx).Return(nil)

	n, err := relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uuid.UUID{ok.ID, bad.ID}, dispatched)
}

func TestRelay_ProcessBatch_FetchError(t *testing.T) {
	relay, db, tx, repo := setupRelay(t, outbox.DispatcherFunc(func(context.Context, *models.InvoiceEvent) error {
		t.Fatal("dispatcher must not be called")
		return nil
	}))
	ctx := context.Background()

	db.EXPECT().Begin(ctx).Return(tx, nil)
	tx.EXPECT().Outbox().Return(repo)
	tx.EXPECT().Rollback(ctx).Return(nil)
	repo.EXPECT().FetchPending(ctx, 10, 3).Return(nil, errors.New("connection reset"))

	_, err := relay.ProcessBatch(ctx)
	assert.Error(t, err)
}

func TestRelay_ProcessBatch_BeginError(t *testing.T) {
	relay, db, _, _ := setupRelay(t, outbox.DispatcherFunc(func(context.Context, *models.InvoiceEvent) error { return nil }))
	ctx := context.Background()
	db.EXPECT().Begin(ctx).Return(nil, errors.New("pool closed"))

	_, err := relay.ProcessBatch(ctx)
	assert.ErrorContains(t, err, "pool closed")
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	relay, db, tx, repo := setupRelay(t, outbox.DispatcherFunc(func(context.Context, *models.InvoiceEvent) error { return nil }))
	ctx, cancel := context.WithCancel(context.Background())

	db.EXPECT().Begin(gomock.Any()).Return(tx, nil).AnyTimes()
	tx.EXPECT().Outbox().Return(repo).AnyTimes()
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	tx.EXPECT().Commit(gomock.Any()).Return(nil).AnyTimes()
	repo.EXPECT().FetchPending(gomock.Any(), 10, 3).Return(nil, nil).AnyTimes()

	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
