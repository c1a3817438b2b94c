package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/models"
)

// Templates maps each invoice event to a mail template id.
type Templates struct {
	Created  string
	Updated  string
	Reminder string
}

func (t Templates) For(kind models.InvoiceEventType) string {
	switch kind {
	case models.InvoiceEventCreated:
		return t.Created
	case models.InvoiceEventUpdated:
		return t.Updated
	case models.InvoiceEventReminder:
		return t.Reminder
	}
	return ""
}

// Notifier emails an invoice's client about invoice events.
type Notifier struct {
	sender    Sender
	templates Templates
	baseURL   string
}

func NewNotifier(sender Sender, templates Templates, baseURL string) *Notifier {
	return &Notifier{sender: sender, templates: templates, baseURL: strings.TrimRight(baseURL, "/")}
}

// Variables are the template variables for inv.
func (n *Notifier) Variables(inv *models.Invoice) map[string]any {
	return map[string]any{
		"clientName":     inv.ClientName,
		"invoiceNumber":  inv.InvoiceNumber,
		"invoiceDueDate": invoicing.FormatDate(invoicing.DueOn(inv.Date, inv.DueDate)),
		"totalAmount":    invoicing.FormatCurrency(inv.Total, inv.Currency),
		"invoiceLink":    fmt.Sprintf("%s/api/v1/invoices/%s/pdf", n.baseURL, inv.ID),
	}
}

// Notify sends the template for kind to the invoice's client.
func (n *Notifier) Notify(ctx context.Context, inv *models.Invoice, kind models.InvoiceEventType) error {
	to := Recipient{Email: inv.ClientEmail, Name: inv.ClientName}
	if err := n.sender.SendTemplatedEmail(ctx, n.templates.For(kind), to, n.Variables(inv)); err != nil {
		return fmt.Errorf("notify %s for invoice %s: %w", kind, inv.ID, err)
	}
	return nil
}

// SendReminder emails the payment reminder for inv.
func (n *Notifier) SendReminder(ctx context.Context, inv *models.Invoice) error {
	return n.Notify(ctx, inv, models.InvoiceEventReminder)
}

// Dispatch handles an outbox event whose payload is the invoice JSON.
func (n *Notifier) Dispatch(ctx context.Context, ev *models.InvoiceEvent) error {
	var inv models.Invoice
	if err := json.Unmarshal(ev.Payload, &inv); err != nil {
		return fmt.Errorf("decode event %s payload: %w", ev.ID, err)
	}
	return n.Notify(ctx, &inv, ev.Type)
}
