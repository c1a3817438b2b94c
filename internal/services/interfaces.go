package services

import (
	"context"

	"invoicehub/internal/models"
	"invoicehub/internal/transport/dto"
)

// UserService defines the interface for account and profile logic.
type UserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, req *dto.LogoutRequest) error
	GetByID(ctx context.Context, req *dto.GetUserByIdRequest) (*models.User, error)
	Onboard(ctx context.Context, req *dto.OnboardRequest) (*models.User, error)
}

// InvoiceService defines the interface for invoice-related business logic. Every
// operation is scoped to req.UserId; an invoice owned by someone else is ErrNotFound.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*models.Invoice, error)
	GetInvoiceByID(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, error)
	ListInvoices(ctx context.Context, req *dto.ListInvoicesRequest) ([]models.Invoice, int, error)
	UpdateInvoice(ctx context.Context, req *dto.UpdateInvoiceRequest) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, req *dto.DeleteInvoiceRequest) error
	MarkAsPaid(ctx context.Context, req *dto.MarkInvoicePaidRequest) (*models.Invoice, error)
	SendReminder(ctx context.Context, req *dto.SendReminderRequest) error
	RenderPDF(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, []byte, error)
}

// DashboardService aggregates an owner's invoices.
type DashboardService interface {
	Summary(ctx context.Context, req *dto.DashboardSummaryRequest) (*dto.DashboardSummaryResponse, error)
	PaidRevenue(ctx context.Context, req *dto.RevenueRequest) (*dto.RevenueResponse, error)
}

// ReminderSender emails a payment reminder for one invoice.
type ReminderSender interface {
	SendReminder(ctx context.Context, inv *models.Invoice) error
}
