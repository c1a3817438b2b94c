package routes

import (
	"invoicehub/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterInvoiceRoutes registers all routes related to invoices. reminderLimit guards
// the reminder route, which sends email.
func RegisterInvoiceRoutes(
	rg *gin.RouterGroup,
	invoiceHandler handlers.InvoiceHandlerInterface,
	authMiddleware gin.HandlerFunc,
	reminderLimit gin.HandlerFunc,
) {
	invoices := rg.Group("/invoices")
	invoices.Use(authMiddleware) // Apply auth middleware
	{
		invoices.POST("", invoiceHandler.CreateInvoice)
		invoices.GET("", invoiceHandler.ListInvoices)
		invoices.GET("/:id", invoiceHandler.GetInvoiceByID)
		invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
		invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		invoices.POST("/:id/paid", invoiceHandler.MarkAsPaid)
		invoices.GET("/:id/pdf", invoiceHandler.DownloadPDF)
		invoices.POST("/:id/reminder", reminderLimit, invoiceHandler.SendReminder)
	}
}
