package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/models"
	"invoicehub/internal/render"
	"invoicehub/internal/services"
	"invoicehub/internal/transport/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRegisterInvoiceRoutes(t *testing.T) {
	env := setupTestRouter(t, 1)

	expectedRoutes := []struct {
		Method string
		Path   string
	}{
		{http.MethodPost, "/api/v1/invoices"},
		{http.MethodGet, "/api/v1/invoices"},
		{http.MethodGet, "/api/v1/invoices/:id"},
		{http.MethodPut, "/api/v1/invoices/:id"},
		{http.MethodDelete, "/api/v1/invoices/:id"},
		{http.MethodPost, "/api/v1/invoices/:id/paid"},
		{http.MethodGet, "/api/v1/invoices/:id/pdf"},
		{http.MethodPost, "/api/v1/invoices/:id/reminder"},
	}

	registered := make(map[string]bool)
	for _, r := range env.router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, expected := range expectedRoutes {
		assert.True(t, registered[expected.Method+" "+expected.Path], "Expected route %s %s to be registered", expected.Method, expected.Path)
	}
}

func TestInvoiceHandler_CreateInvoice(t *testing.T) {
	body := map[string]any{
		"invoiceName":            "Website redesign",
		"invoiceNumber":          7,
		"currency":               "USD",
		"date":                   "2025-01-05",
		"dueDate":                15,
		"clientName":             "Acme Ltd",
		"clientEmail":            "billing@acme.test",
		"clientAddress":          "1 Road",
		"invoiceItemDescription": "Design work",
		"invoiceItemQuantity":    3,
		"invoiceItemRate":        "100",
	}

	t.Run("Success", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		created := sampleInvoice(env.userID)
		env.invoices.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(req *dto.CreateInvoiceRequest) bool {
			return req.UserId == env.userID && req.InvoiceNumber == 7 && req.ItemRate.String() == "100"
		})).Return(created, nil).Once()

		rec := env.do(http.MethodPost, "/api/v1/invoices", body, env.token)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeBody(t, rec)
		assert.Equal(t, created.ID.String(), resp["id"])
		assert.Equal(t, "$300.00", resp["totalFormatted"])
		assert.Equal(t, "Net 15", resp["dueDateLabel"])
		assert.Equal(t, "/api/v1/invoices/"+created.ID.String()+"/pdf", resp["pdfPath"])
	})

	t.Run("Validation Failed", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		verr := invoicing.NewValidationError()
		verr.Add("clientEmail", "clientEmail must be a valid email address")
		verr.Add("total", "total does not match quantity * rate")
		env.invoices.On("CreateInvoice", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: %w", services.ErrValidation, verr)).Once()

		rec := env.do(http.MethodPost, "/api/v1/invoices", body, env.token)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody(t, rec)
		assert.Equal(t, "Validation failed", resp["error"])
		details, ok := resp["details"].(map[string]any)
		if assert.True(t, ok) {
			assert.Contains(t, details, "clientEmail")
			assert.Contains(t, details, "total")
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		rec := env.do(http.MethodPost, "/api/v1/invoices", `{"invoiceName":`, env.token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["error"], "Invalid request body")
	})

	t.Run("Missing Token", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		rec := env.do(http.MethodPost, "/api/v1/invoices", body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestInvoiceHandler_ListInvoices(t *testing.T) {
	env := setupTestRouter(t, 1)
	inv := sampleInvoice(env.userID)
	env.invoices.On("ListInvoices", mock.Anything, mock.MatchedBy(func(req *dto.ListInvoicesRequest) bool {
		return req.UserId == env.userID && req.Limit == 20 && req.Offset == 0 &&
			req.Status != nil && *req.Status == models.InvoiceStatusPaid
	})).Return([]models.Invoice{*inv}, 1, nil).Once()

	rec := env.do(http.MethodGet, "/api/v1/invoices?status=PAID", nil, env.token)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.EqualValues(t, 1, resp["total"])
	assert.EqualValues(t, 20, resp["limit"])
	assert.Len(t, resp["invoices"], 1)
}

func TestInvoiceHandler_GetInvoiceByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		inv := sampleInvoice(env.userID)
		env.invoices.On("GetInvoiceByID", mock.Anything, &dto.GetInvoiceByIDRequest{ID: inv.ID, UserId: env.userID}).Return(inv, nil).Once()

		rec := env.do(http.MethodGet, "/api/v1/invoices/"+inv.ID.String(), nil, env.token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Acme Ltd", decodeBody(t, rec)["clientName"])
	})

	t.Run("Not Owned", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		env.invoices.On("GetInvoiceByID", mock.Anything, mock.Anything).Return(nil, services.ErrNotFound).Once()

		rec := env.do(http.MethodGet, "/api/v1/invoices/"+sampleInvoice(env.userID).ID.String(), nil, env.token)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Invoice not found", decodeBody(t, rec)["error"])
	})

	t.Run("Invalid ID", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		rec := env.do(http.MethodGet, "/api/v1/invoices/not-a-uuid", nil, env.token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid invoice ID format", decodeBody(t, rec)["error"])
	})
}

func TestInvoiceHandler_UpdateInvoice_InvalidTransition(t *testing.T) {
	env := setupTestRouter(t, 1)
	inv := sampleInvoice(env.userID)
	env.invoices.On("UpdateInvoice", mock.Anything, mock.MatchedBy(func(req *dto.UpdateInvoiceRequest) bool {
		return req.ID == inv.ID && req.UserId == env.userID && req.Status == models.InvoiceStatusPending
	})).Return(nil, fmt.Errorf("%w: PAID to PENDING", services.ErrInvalidTransition)).Once()

	rec := env.do(http.MethodPut, "/api/v1/invoices/"+inv.ID.String(), map[string]any{"status": "PENDING"}, env.token)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInvoiceHandler_DeleteInvoice(t *testing.T) {
	env := setupTestRouter(t, 1)
	inv := sampleInvoice(env.userID)
	env.invoices.On("DeleteInvoice", mock.Anything, &dto.DeleteInvoiceRequest{ID: inv.ID, UserId: env.userID}).Return(nil).Once()

	rec := env.do(http.MethodDelete, "/api/v1/invoices/"+inv.ID.String(), nil, env.token)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestInvoiceHandler_MarkAsPaid(t *testing.T) {
	env := setupTestRouter(t, 1)
	inv := sampleInvoice(env.userID)
	inv.Status = models.InvoiceStatusPaid
	env.invoices.On("MarkAsPaid", mock.Anything, &dto.MarkInvoicePaidRequest{ID: inv.ID, UserId: env.userID}).Return(inv, nil).Once()

	rec := env.do(http.MethodPost, "/api/v1/invoices/"+inv.ID.String()+"/paid", nil, env.token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PAID", decodeBody(t, rec)["status"])
}

func TestInvoiceHandler_DownloadPDF(t *testing.T) {
	t.Run("Inline PDF", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		inv := sampleInvoice(env.userID)
		pdf := []byte("%PDF-1.3 test")
		env.invoices.On("RenderPDF", mock.Anything, &dto.GetInvoiceByIDRequest{ID: inv.ID, UserId: env.userID}).Return(inv, pdf, nil).Once()

		rec := env.do(http.MethodGet, "/api/v1/invoices/"+inv.ID.String()+"/pdf", nil, env.token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, render.ContentType, rec.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename="invoice-7.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, pdf, rec.Body.Bytes())
	})

	t.Run("Render Failure", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		inv := sampleInvoice(env.userID)
		env.invoices.On("RenderPDF", mock.Anything, mock.Anything).
			Return(nil, nil, fmt.Errorf("%w: %w", services.ErrRenderFailed, errors.New("font missing"))).Once()

		rec := env.do(http.MethodGet, "/api/v1/invoices/"+inv.ID.String()+"/pdf", nil, env.token)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate PDF", decodeBody(t, rec)["error"])
	})
}

func TestInvoiceHandler_SendReminder(t *testing.T) {
	t.Run("Rate Limited", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		inv := sampleInvoice(env.userID)
		env.invoices.On("SendReminder", mock.Anything, &dto.SendReminderRequest{ID: inv.ID, UserId: env.userID}).Return(nil).Once()

		first := env.do(http.MethodPost, "/api/v1/invoices/"+inv.ID.String()+"/reminder", nil, env.token)
		second := env.do(http.MethodPost, "/api/v1/invoices/"+inv.ID.String()+"/reminder", nil, env.token)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.NotEmpty(t, second.Header().Get("Retry-After"))
	})

	t.Run("Provider Failure", func(t *testing.T) {
		env := setupTestRouter(t, 1)
		inv := sampleInvoice(env.userID)
		env.invoices.On("SendReminder", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: mailtrap returned 500", services.ErrNotificationFailed)).Once()

		rec := env.do(http.MethodPost, "/api/v1/invoices/"+inv.ID.String()+"/reminder", nil, env.token)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestInvoiceHandler_UnexpectedError(t *testing.T) {
	env := setupTestRouter(t, 1)
	env.invoices.On("ListInvoices", mock.Anything, mock.Anything).
		Return(nil, 0, errors.New("internal error during listing invoices: connection reset")).Once()

	rec := env.do(http.MethodGet, "/api/v1/invoices", nil, env.token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
}
