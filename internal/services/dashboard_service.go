package services

import (
	"context"
	"time"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/models"
	"invoicehub/internal/storage"
	"invoicehub/internal/transport/dto"

	"github.com/shopspring/decimal"
)

const defaultRevenueDays = 30

type dashboardService struct {
	invoices  storage.InvoiceRepository
	validator *invoicing.Validator
	now       func() time.Time
}

func NewDashboardService(invoices storage.InvoiceRepository) DashboardService {
	return newDashboardService(invoices, time.Now)
}

// NewDashboardServiceAt is NewDashboardService with a fixed clock.
func NewDashboardServiceAt(invoices storage.InvoiceRepository, now func() time.Time) DashboardService {
	return newDashboardService(invoices, now)
}

func newDashboardService(invoices storage.InvoiceRepository, now func() time.Time) *dashboardService {
	return &dashboardService{invoices: invoices, validator: invoicing.NewValidator(), now: now}
}

// Summary counts the owner's invoices and sums them per currency: PAID totals are
// revenue, PENDING totals are outstanding.
func (s *dashboardService) Summary(ctx context.Context, req *dto.DashboardSummaryRequest) (*dto.DashboardSummaryResponse, error) {
	totals, err := s.invoices.StatusTotals(ctx, req.UserId)
	if err != nil {
		return nil, MapRepoError(err, "summarizing invoices")
	}

	revenue := map[models.Currency]decimal.Decimal{}
	outstanding := map[models.Currency]decimal.Decimal{}
	resp := &dto.DashboardSummaryResponse{}
	for _, t := range totals {
		resp.TotalInvoices += t.Count
		switch t.Status {
		case models.InvoiceStatusPaid:
			resp.PaidInvoices += t.Count
			revenue[t.Currency] = revenue[t.Currency].Add(t.Sum)
		case models.InvoiceStatusPending:
			resp.PendingInvoices += t.Count
			outstanding[t.Currency] = outstanding[t.Currency].Add(t.Sum)
		}
	}
	resp.Revenue = currencyAmounts(revenue)
	resp.Outstanding = currencyAmounts(outstanding)
	return resp, nil
}

// PaidRevenue returns paid totals per UTC day over the last req.Days days, today
// included, oldest first.
func (s *dashboardService) PaidRevenue(ctx context.Context, req *dto.RevenueRequest) (*dto.RevenueResponse, error) {
	if req.Days == 0 {
		req.Days = defaultRevenueDays
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(req.Days - 1))

	rows, err := s.invoices.PaidRevenueByDay(ctx, req.UserId, since)
	if err != nil {
		return nil, MapRepoError(err, "loading paid revenue")
	}

	points := make([]dto.RevenuePoint, 0, len(rows))
	for _, r := range rows {
		day := r.Day.UTC()
		points = append(points, dto.RevenuePoint{
			Date:           day.Format(time.DateOnly),
			Label:          day.Format("Jan 2"),
			CurrencyAmount: currencyAmount(r.Currency, r.Sum),
		})
	}
	return &dto.RevenueResponse{Days: req.Days, Points: points}, nil
}

// currencyAmounts lists sums in models.Currencies order; currencies never mix.
func currencyAmounts(sums map[models.Currency]decimal.Decimal) []dto.CurrencyAmount {
	out := make([]dto.CurrencyAmount, 0, len(sums))
	for _, c := range models.Currencies {
		if sum, ok := sums[c]; ok {
			out = append(out, currencyAmount(c, sum))
		}
	}
	return out
}

func currencyAmount(c models.Currency, sum decimal.Decimal) dto.CurrencyAmount {
	sum = sum.Round(invoicing.MoneyPlaces)
	return dto.CurrencyAmount{
		Currency:  c,
		Amount:    sum,
		Formatted: invoicing.FormatCurrency(sum, c),
	}
}
