package dto

import (
	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardSummaryRequest struct {
	UserId uuid.UUID `json:"-"`
}

// RevenueRequest selects paid revenue over the last Days days.
type RevenueRequest struct {
	Days   int       `form:"days,default=30" validate:"min=1,max=365"`
	UserId uuid.UUID `json:"-"`
}

// CurrencyAmount is a sum in one currency. Amounts in different currencies are never added.
type CurrencyAmount struct {
	Currency  models.Currency `json:"currency"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"number"`
	Formatted string          `json:"formatted" example:"$1,234.50"`
}

type DashboardSummaryResponse struct {
	TotalInvoices   int              `json:"totalInvoices"`
	PaidInvoices    int              `json:"paidInvoices"`
	PendingInvoices int              `json:"pendingInvoices"`
	Revenue         []CurrencyAmount `json:"revenue"`
	Outstanding     []CurrencyAmount `json:"outstanding"`
}

// RevenuePoint is the paid total for one UTC day and currency.
type RevenuePoint struct {
	Date  string `json:"date" example:"2025-01-05"`
	Label string `json:"label" example:"Jan 5"`
	CurrencyAmount
}

type RevenueResponse struct {
	Days   int            `json:"days"`
	Points []RevenuePoint `json:"points"`
}
