package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/models"
	"invoicehub/internal/services"
	"invoicehub/internal/transport/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDashboardHandler_Summary(t *testing.T) {
	env := setupTestRouter(t, 1)
	summary := &dto.DashboardSummaryResponse{
		TotalInvoices:   3,
		PaidInvoices:    2,
		PendingInvoices: 1,
		Revenue: []dto.CurrencyAmount{
			{Currency: models.CurrencyUSD, Amount: decimal.NewFromInt(500), Formatted: "$500.00"},
		},
	}
	env.dashboard.On("Summary", mock.Anything, &dto.DashboardSummaryRequest{UserId: env.userID}).Return(summary, nil).Once()

	rec := env.do(http.MethodGet, "/api/v1/dashboard/summary", nil, env.token)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.EqualValues(t, 3, resp["totalInvoices"])
	assert.Len(t, resp["revenue"], 1)
}

func TestDashboardHandler_PaidRevenue(t *testing.T) {
	t.Run("Default Window", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		env.dashboard.On("PaidRevenue", mock.Anything, &dto.RevenueRequest{Days: 30, UserId: env.userID}).
			Return(&dto.RevenueResponse{Days: 30, Points: []dto.RevenuePoint{}}, nil).Once()

		rec := env.do(http.MethodGet, "/api/v1/dashboard/revenue", nil, env.token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 30, decodeBody(t, rec)["days"])
	})

	t.Run("Out Of Range", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		verr := invoicing.NewValidationError()
		verr.Add("days", "days must be at most 365")
		env.dashboard.On("PaidRevenue", mock.Anything, &dto.RevenueRequest{Days: 400, UserId: env.userID}).
			Return(nil, fmt.Errorf("%w: %w", services.ErrValidation, verr)).Once()

		rec := env.do(http.MethodGet, "/api/v1/dashboard/revenue?days=400", nil, env.token)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Not A Number", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		rec := env.do(http.MethodGet, "/api/v1/dashboard/revenue?days=abc", nil, env.token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
