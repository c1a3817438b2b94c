package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/render"
	"invoicehub/internal/storage"
	"invoicehub/internal/transport/dto"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type invoiceService struct {
	db        storage.Transactor
	invoices  storage.InvoiceRepository
	reminders ReminderSender
	renderer  render.Renderer
	validator *invoicing.Validator
	log       zerolog.Logger
}

// NewInvoiceService wires the invoice operations. Reads go through invoices; every
// write runs in a transaction from db so the outbox event commits with it.
func NewInvoiceService(db storage.Transactor, invoices storage.InvoiceRepository, reminders ReminderSender, renderer render.Renderer) InvoiceService {
	return &invoiceService{
		db:        db,
		invoices:  invoices,
		reminders: reminders,
		renderer:  renderer,
		validator: invoicing.NewValidator(),
		log:       logger.WithComponent("invoice-service"),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.checkInput(&req.InvoiceInput); err != nil {
		return nil, err
	}

	inv := invoiceFromInput(&req.InvoiceInput)
	inv.ID = uuid.New()
	inv.UserID = req.UserId
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPending
	}

	// --- Transaction Start ---
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("internal error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if missingFromParty(inv) {
		owner, err := tx.Users().GetByID(ctx, &dto.GetUserByIdRequest{ID: req.UserId})
		if err != nil {
			return nil, MapRepoError(err, "loading invoice owner")
		}
		fillFromParty(inv, owner.FullName(), owner.Email, owner.Address)
		if verr := checkFromParty(inv); verr != nil {
			return nil, verr
		}
	}

	created, err := tx.Invoices().Create(ctx, inv)
	if err != nil {
		return nil, MapRepoError(err, "creating invoice")
	}
	if err := enqueueEvent(ctx, tx, created, models.InvoiceEventCreated); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("internal error committing invoice creation: %w", err)
	}
	// --- End Transaction ---

	s.log.Info().Str("invoice_id", created.ID.String()).Str("user_id", req.UserId.String()).Msg("Invoice created")
	return created, nil
}

func (s *invoiceService) GetInvoiceByID(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, req)
	if err != nil {
		return nil, MapRepoError(err, "getting invoice")
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, req *dto.ListInvoicesRequest) ([]models.Invoice, int, error) {
	if err := validate(s.validator, req); err != nil {
		return nil, 0, err
	}
	invoices, err := s.invoices.List(ctx, req)
	if err != nil {
		return nil, 0, MapRepoError(err, "listing invoices")
	}
	total, err := s.invoices.Count(ctx, req)
	if err != nil {
		return nil, 0, MapRepoError(err, "counting invoices")
	}
	return invoices, total, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, req *dto.UpdateInvoiceRequest) (*models.Invoice, error) {
	if err := s.checkInput(&req.InvoiceInput); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("internal error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := tx.Invoices().GetForUpdate(ctx, &dto.GetInvoiceByIDRequest{ID: req.ID, UserId: req.UserId})
	if err != nil {
		return nil, MapRepoError(err, "getting invoice")
	}

	inv := invoiceFromInput(&req.InvoiceInput)
	inv.ID = current.ID
	inv.UserID = current.UserID
	inv.CreatedAt = current.CreatedAt
	if inv.Status == "" {
		inv.Status = current.Status
	}
	if !isValidInvoiceStatusTransition(current.Status, inv.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, inv.Status)
	}
	fillFromParty(inv, current.FromName, current.FromEmail, current.FromAddress)

	updated, err := tx.Invoices().Update(ctx, inv)
	if err != nil {
		return nil, MapRepoError(err, "updating invoice")
	}
	if err := enqueueEvent(ctx, tx, updated, models.InvoiceEventUpdated); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("internal error committing invoice update: %w", err)
	}
	return updated, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, req *dto.DeleteInvoiceRequest) error {
	if err := s.invoices.Delete(ctx, req); err != nil {
		return MapRepoError(err, "deleting invoice")
	}
	s.log.Info().Str("invoice_id", req.ID.String()).Str("user_id", req.UserId.String()).Msg("Invoice deleted")
	return nil
}

// MarkAsPaid moves a PENDING invoice to PAID. An invoice that is already PAID is
// returned unchanged.
func (s *invoiceService) MarkAsPaid(ctx context.Context, req *dto.MarkInvoicePaidRequest) (*models.Invoice, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("internal error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := tx.Invoices().GetForUpdate(ctx, &dto.GetInvoiceByIDRequest{ID: req.ID, UserId: req.UserId})
	if err != nil {
		return nil, MapRepoError(err, "getting invoice")
	}
	if current.Status == models.InvoiceStatusPaid {
		return current, nil
	}

	updated, err := tx.Invoices().UpdateStatus(ctx, &dto.UpdateInvoiceStatusRequest{
		ID:     req.ID,
		UserId: req.UserId,
		Status: models.InvoiceStatusPaid,
	})
	if err != nil {
		return nil, MapRepoError(err, "marking invoice paid")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("internal error committing invoice status: %w", err)
	}
	return updated, nil
}

// SendReminder emails the client synchronously; the send is the whole operation, so
// its failure is returned.
func (s *invoiceService) SendReminder(ctx context.Context, req *dto.SendReminderRequest) error {
	inv, err := s.invoices.GetByID(ctx, &dto.GetInvoiceByIDRequest{ID: req.ID, UserId: req.UserId})
	if err != nil {
		return MapRepoError(err, "getting invoice")
	}
	if err := s.reminders.SendReminder(ctx, inv); err != nil {
		s.log.Error().Err(err).Str("invoice_id", inv.ID.String()).Msg("Reminder email failed")
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// RenderPDF loads the invoice and renders it. The renderer never sees an invoice the
// caller does not own.
func (s *invoiceService) RenderPDF(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, []byte, error) {
	inv, err := s.GetInvoiceByID(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, inv); err != nil {
		s.log.Error().Err(err).Str("invoice_id", inv.ID.String()).Msg("PDF render failed")
		sentry.CaptureException(err)
		return nil, nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return inv, buf.Bytes(), nil
}

// checkInput applies the field rules, the amount bounds and the total policy, reporting
// all failures together.
func (s *invoiceService) checkInput(in *dto.InvoiceInput) error {
	verr := invoicing.NewValidationError()
	if err := s.validator.Struct(in); err != nil {
		if !errors.As(err, &verr) {
			return fmt.Errorf("validate invoice: %w", err)
		}
	}
	invoicing.CheckAmounts(verr, in.ItemQuantity, in.ItemRate)
	invoicing.CheckTotal(verr, in.Total, in.ItemQuantity, in.ItemRate)
	if !verr.Empty() {
		return fmt.Errorf("%w: %w", ErrValidation, verr)
	}
	return nil
}

// invoiceFromInput copies validated input onto a new invoice. The stored total is
// always recomputed.
func invoiceFromInput(in *dto.InvoiceInput) *models.Invoice {
	date, _ := invoicing.ParseDate(in.Date)
	return &models.Invoice{
		InvoiceName:     strings.TrimSpace(in.InvoiceName),
		InvoiceNumber:   in.InvoiceNumber,
		Currency:        in.Currency,
		Status:          in.Status,
		Date:            date.UTC(),
		DueDate:         in.DueDate,
		FromName:        strings.TrimSpace(in.FromName),
		FromEmail:       strings.TrimSpace(in.FromEmail),
		FromAddress:     strings.TrimSpace(in.FromAddress),
		ClientName:      strings.TrimSpace(in.ClientName),
		ClientEmail:     strings.TrimSpace(in.ClientEmail),
		ClientAddress:   strings.TrimSpace(in.ClientAddress),
		ItemDescription: strings.TrimSpace(in.ItemDescription),
		ItemQuantity:    in.ItemQuantity,
		ItemRate:        in.ItemRate,
		Total:           invoicing.ComputeTotal(in.ItemQuantity, in.ItemRate),
		Note:            strings.TrimSpace(in.Note),
	}
}

func missingFromParty(inv *models.Invoice) bool {
	return inv.FromName == "" || inv.FromEmail == "" || inv.FromAddress == ""
}

// fillFromParty sets only the blank issuer fields.
func fillFromParty(inv *models.Invoice, name, email, address string) {
	if inv.FromName == "" {
		inv.FromName = strings.TrimSpace(name)
	}
	if inv.FromEmail == "" {
		inv.FromEmail = strings.TrimSpace(email)
	}
	if inv.FromAddress == "" {
		inv.FromAddress = strings.TrimSpace(address)
	}
}

// checkFromParty fails for an issuer the profile could not complete, i.e. the
// owner has not onboarded and left the fields blank.
func checkFromParty(inv *models.Invoice) error {
	verr := invoicing.NewValidationError()
	if inv.FromName == "" {
		verr.Add("fromName", "fromName is required")
	}
	if inv.FromEmail == "" {
		verr.Add("fromEmail", "fromEmail is required")
	}
	if inv.FromAddress == "" {
		verr.Add("fromAddress", "fromAddress is required")
	}
	if verr.Empty() {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, verr)
}

func enqueueEvent(ctx context.Context, tx storage.Tx, inv *models.Invoice, kind models.InvoiceEventType) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}
	ev := &models.InvoiceEvent{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		UserID:    inv.UserID,
		Type:      kind,
		Payload:   payload,
	}
	if err := tx.Outbox().Enqueue(ctx, ev); err != nil {
		return MapRepoError(err, "queueing invoice event")
	}
	return nil
}
