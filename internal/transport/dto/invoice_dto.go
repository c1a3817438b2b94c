package dto

import (
	"time"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceInput is the editable part of an invoice, shared by create and update.
// Blank from* fields are filled from the owner's profile on create.
type InvoiceInput struct {
	InvoiceName     string               `json:"invoiceName" validate:"notblank,max=200"`
	InvoiceNumber   int                  `json:"invoiceNumber" validate:"gt=0"`
	Currency        models.Currency      `json:"currency" validate:"currency"`
	Status          models.InvoiceStatus `json:"status" validate:"omitempty,invoicestatus"`
	Date            string               `json:"date" validate:"required,isodate" example:"2025-01-05"`
	DueDate         int                  `json:"dueDate" validate:"netdays"`
	FromName        string               `json:"fromName" validate:"max=200"`
	FromEmail       string               `json:"fromEmail" validate:"omitempty,email"`
	FromAddress     string               `json:"fromAddress" validate:"max=500"`
	ClientName      string               `json:"clientName" validate:"notblank,max=200"`
	ClientEmail     string               `json:"clientEmail" validate:"required,email"`
	ClientAddress   string               `json:"clientAddress" validate:"notblank,max=500"`
	ItemDescription string               `json:"invoiceItemDescription" validate:"notblank,max=500"`
	ItemQuantity    decimal.Decimal      `json:"invoiceItemQuantity" validate:"min=0" swaggertype:"number"`
	ItemRate        decimal.Decimal      `json:"invoiceItemRate" validate:"min=0" swaggertype:"number"`
	Total           *decimal.Decimal     `json:"total,omitempty" validate:"omitempty,min=0" swaggertype:"number"`
	Note            string               `json:"note" validate:"max=2000"`
}

// CreateInvoiceRequest defines the structure for creating a new invoice.
type CreateInvoiceRequest struct {
	InvoiceInput
	UserId uuid.UUID `json:"-"`
}

// UpdateInvoiceRequest replaces every editable field of an invoice. ID comes from the URL path.
type UpdateInvoiceRequest struct {
	InvoiceInput
	ID     uuid.UUID `json:"-"`
	UserId uuid.UUID `json:"-"`
}

// GetInvoiceByIDRequest defines the structure for getting an invoice by ID.
type GetInvoiceByIDRequest struct {
	ID     uuid.UUID `json:"-"`
	UserId uuid.UUID `json:"-"`
}

type DeleteInvoiceRequest struct {
	ID     uuid.UUID `json:"-"`
	UserId uuid.UUID `json:"-"`
}

type MarkInvoicePaidRequest struct {
	ID     uuid.UUID `json:"-"`
	UserId uuid.UUID `json:"-"`
}

type SendReminderRequest struct {
	ID     uuid.UUID `json:"-"`
	UserId uuid.UUID `json:"-"`
}

// UpdateInvoiceStatusRequest is the repository-level status change.
type UpdateInvoiceStatusRequest struct {
	ID     uuid.UUID
	UserId uuid.UUID
	Status models.InvoiceStatus
}

// ListInvoicesRequest defines parameters for listing the caller's invoices, newest first.
type ListInvoicesRequest struct {
	Limit  int                   `form:"limit,default=20" validate:"min=1,max=100"`
	Offset int                   `form:"offset,default=0" validate:"min=0"`
	Status *models.InvoiceStatus `form:"status" validate:"omitempty,invoicestatus"`
	UserId uuid.UUID             `json:"-"`
}

// InvoiceResponse is an invoice plus its display derivations.
type InvoiceResponse struct {
	models.Invoice
	TotalFormatted string    `json:"totalFormatted" example:"$300.00"`
	DueDateLabel   string    `json:"dueDateLabel" example:"Net 15"`
	DueOn          time.Time `json:"dueOn"`
	PDFPath        string    `json:"pdfPath" example:"/api/v1/invoices/0b1f.../pdf"`
}

func NewInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		Invoice:        *inv,
		TotalFormatted: invoicing.FormatCurrency(inv.Total, inv.Currency),
		DueDateLabel:   invoicing.DueDateLabel(inv.DueDate),
		DueOn:          invoicing.DueOn(inv.Date, inv.DueDate),
		PDFPath:        "/api/v1/invoices/" + inv.ID.String() + "/pdf",
	}
}

type ListInvoicesResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
