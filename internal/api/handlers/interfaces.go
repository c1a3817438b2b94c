package handlers

import "github.com/gin-gonic/gin"

// UserHandlerInterface defines the methods needed by the auth and user routes.
type UserHandlerInterface interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	GetProfile(c *gin.Context)
	Onboard(c *gin.Context)
}

// InvoiceHandlerInterface defines the methods needed by the invoice routes.
type InvoiceHandlerInterface interface {
	CreateInvoice(c *gin.Context)
	ListInvoices(c *gin.Context)
	GetInvoiceByID(c *gin.Context)
	UpdateInvoice(c *gin.Context)
	DeleteInvoice(c *gin.Context)
	MarkAsPaid(c *gin.Context)
	DownloadPDF(c *gin.Context)
	SendReminder(c *gin.Context)
}

// DashboardHandlerInterface defines the methods needed by the dashboard routes.
type DashboardHandlerInterface interface {
	Summary(c *gin.Context)
	PaidRevenue(c *gin.Context)
}

// Ensure handlers implements the interface (compile-time check)
var _ UserHandlerInterface = (*UserHandler)(nil)
var _ InvoiceHandlerInterface = (*InvoiceHandler)(nil)
var _ DashboardHandlerInterface = (*DashboardHandler)(nil)
