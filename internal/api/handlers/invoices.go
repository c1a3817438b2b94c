package handlers

import (
	"fmt"
	"net/http"

	"invoicehub/internal/render"
	"invoicehub/internal/services"
	"invoicehub/internal/transport/dto"

	"github.com/gin-gonic/gin"
)

const invoiceNotFound = "Invoice not found"

// InvoiceHandler holds dependencies for invoice operations.
type InvoiceHandler struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoice godoc
// @Summary      Create an invoice
// @Description  Creates an invoice owned by the caller. Blank issuer fields are filled from the caller's profile. The total is always recomputed from quantity and rate; a supplied total that disagrees is rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice body      dto.InvoiceInput true  "Invoice fields"
// @Success      201 {object}  dto.InvoiceResponse "Invoice created successfully"
// @Failure      400 {object}  map[string]any "Validation failed"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      409 {object}  map[string]string "Conflict"
// @Failure      500 {object}  map[string]string "Internal Server Error"
// @Router       /invoices [post]
// @Security     BearerAuth
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateInvoiceRequest
	if !bindJSON(c, &req.InvoiceInput) {
		return
	}
	req.UserId = userID

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}
	c.JSON(http.StatusCreated, dto.NewInvoiceResponse(inv))
}

// ListInvoices godoc
// @Summary      List invoices
// @Description  Lists the caller's invoices, newest first, optionally filtered by status.
// @Tags         invoices
// @Produce      json
// @Param        status query string false "Filter by status" Enums(PENDING, PAID)
// @Param        limit  query int    false "Page size (1-100)" default(20)
// @Param        offset query int    false "Offset" default(0)
// @Success      200 {object}  dto.ListInvoicesResponse
// @Failure      400 {object}  map[string]any "Validation failed"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      500 {object}  map[string]string "Internal Server Error"
// @Router       /invoices [get]
// @Security     BearerAuth
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ListInvoicesRequest
	if !bindQuery(c, &req) {
		return
	}
	req.UserId = userID

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}

	resp := dto.ListInvoicesResponse{
		Invoices: make([]dto.InvoiceResponse, 0, len(invoices)),
		Total:    total,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	for i := range invoices {
		resp.Invoices = append(resp.Invoices, dto.NewInvoiceResponse(&invoices[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetInvoiceByID godoc
// @Summary      Get an invoice
// @Description  Returns one of the caller's invoices. Invoices owned by someone else are reported as not found.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object}  dto.InvoiceResponse
// @Failure      400 {object}  map[string]string "Invalid ID"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "Invoice not found"
// @Router       /invoices/{id} [get]
// @Security     BearerAuth
func (h *InvoiceHandler) GetInvoiceByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), &dto.GetInvoiceByIDRequest{ID: id, UserId: userID})
	if err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}

// UpdateInvoice godoc
// @Summary      Update an invoice
// @Description  Replaces every editable field. Blank issuer fields keep their stored values. A PAID invoice cannot go back to PENDING.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string          true "Invoice ID" format(uuid)
// @Param        invoice body dto.InvoiceInput true "Invoice fields"
// @Success      200 {object}  dto.InvoiceResponse
// @Failure      400 {object}  map[string]any "Validation failed"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "Invoice not found"
// @Failure      409 {object}  map[string]string "Invalid status transition"
// @Router       /invoices/{id} [put]
// @Security     BearerAuth
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if !bindJSON(c, &req.InvoiceInput) {
		return
	}
	req.ID = id
	req.UserId = userID

	inv, err := h.invoiceService.UpdateInvoice(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}

// DeleteInvoice godoc
// @Summary      Delete an invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object}  map[string]string "Invalid ID"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "Invoice not found"
// @Router       /invoices/{id} [delete]
// @Security     BearerAuth
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), &dto.DeleteInvoiceRequest{ID: id, UserId: userID}); err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAsPaid godoc
// @Summary      Mark an invoice as paid
// @Description  Moves a PENDING invoice to PAID. Marking a PAID invoice again returns it unchanged.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object}  dto.InvoiceResponse
// @Failure      400 {object}  map[string]string "Invalid ID"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "Invoice not found"
// @Router       /invoices/{id}/paid [post]
// @Security     BearerAuth
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	inv, err := h.invoiceService.MarkAsPaid(c.Request.Context(), &dto.MarkInvoicePaidRequest{ID: id, UserId: userID})
	if err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}

// DownloadPDF godoc
// @Summary      Download an invoice as PDF
// @Description  Renders the invoice on demand. The document is displayed inline.
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file}    file
// @Failure      400 {object}  map[string]string "Invalid ID"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "Invoice not found"
// @Failure      500 {object}  map[string]string "Failed to generate PDF"
// @Router       /invoices/{id}/pdf [get]
// @Security     BearerAuth
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	inv, pdf, err := h.invoiceService.RenderPDF(c.Request.Context(), &dto.GetInvoiceByIDRequest{ID: id, UserId: userID})
	if err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="invoice-%d.pdf"`, inv.InvoiceNumber))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, render.ContentType, pdf)
}

// SendReminder godoc
// @Summary      Email a payment reminder
// @Description  Sends the reminder template to the invoice's client. Limited per user.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object}  map[string]string "Reminder sent"
// @Failure      400 {object}  map[string]string "Invalid ID"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "Invoice not found"
// @Failure      429 {object}  map[string]string "Too many requests"
// @Failure      502 {object}  map[string]string "Email provider failed"
// @Router       /invoices/{id}/reminder [post]
// @Security     BearerAuth
func (h *InvoiceHandler) SendReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.SendReminder(c.Request.Context(), &dto.SendReminderRequest{ID: id, UserId: userID}); err != nil {
		respondError(c, err, invoiceNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder sent"})
}
