package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Currency Enum ---
type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyEUR  Currency = "EUR"
	CurrencySLSH Currency = "SLSH" // Somaliland shilling, not an ISO 4217 code
)

// Currencies lists every currency an invoice may be issued in.
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencySLSH}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencySLSH:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for Currency
func (c *Currency) Scan(value interface{}) error {
	strVal, err := scanString(value, "Currency")
	if err != nil {
		return err
	}
	v := Currency(strVal)
	if !v.Valid() {
		return fmt.Errorf("invalid Currency value: %s", strVal)
	}
	*c = v
	return nil
}

// Value implements the driver.Valuer interface for Currency
func (c Currency) Value() (driver.Value, error) {
	return string(c), nil
}

// --- Invoice Status Enum ---
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// Scan implements the sql.Scanner interface for InvoiceStatus
func (s *InvoiceStatus) Scan(value interface{}) error {
	strVal, err := scanString(value, "InvoiceStatus")
	if err != nil {
		return err
	}
	v := InvoiceStatus(strVal)
	if !v.Valid() {
		return fmt.Errorf("invalid InvoiceStatus value: %s", strVal)
	}
	*s = v
	return nil
}

// Value implements the driver.Valuer interface for InvoiceStatus
func (s InvoiceStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// --- Invoice Event Type Enum ---
type InvoiceEventType string

const (
	InvoiceEventCreated  InvoiceEventType = "invoice.created"
	InvoiceEventUpdated  InvoiceEventType = "invoice.updated"
	InvoiceEventReminder InvoiceEventType = "invoice.reminder"
)

func scanString(value interface{}, typeName string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("failed to scan %s: value is not string or []byte", typeName)
	}
}

// User is an account owning zero or more invoices.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Address      string    `json:"address" db:"address"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Onboarded reports whether the profile fields used as invoice defaults are filled.
func (u *User) Onboarded() bool {
	return strings.TrimSpace(u.FirstName) != "" &&
		strings.TrimSpace(u.LastName) != "" &&
		strings.TrimSpace(u.Address) != ""
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Invoice is the billing document: one issuer, one client and a single line item.
type Invoice struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	UserID        uuid.UUID     `json:"userId" db:"user_id"`
	InvoiceName   string        `json:"invoiceName" db:"invoice_name"`
	InvoiceNumber int           `json:"invoiceNumber" db:"invoice_number"`
	Currency      Currency      `json:"currency" db:"currency"`
	Status        InvoiceStatus `json:"status" db:"status"`
	Date          time.Time     `json:"date" db:"date"`
	DueDate       int           `json:"dueDate" db:"due_date"` // net days, not a calendar date

	FromName    string `json:"fromName" db:"from_name"`
	FromEmail   string `json:"fromEmail" db:"from_email"`
	FromAddress string `json:"fromAddress" db:"from_address"`

	ClientName    string `json:"clientName" db:"client_name"`
	ClientEmail   string `json:"clientEmail" db:"client_email"`
	ClientAddress string `json:"clientAddress" db:"client_address"`

	ItemDescription string          `json:"invoiceItemDescription" db:"item_description"`
	ItemQuantity    decimal.Decimal `json:"invoiceItemQuantity" db:"item_quantity"`
	ItemRate        decimal.Decimal `json:"invoiceItemRate" db:"item_rate"`
	Total           decimal.Decimal `json:"total" db:"total"`

	Note      string    `json:"note,omitempty" db:"note"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// LineItem is one row of the invoice item table.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Total       decimal.Decimal
}

// LineItems returns the invoice rows in display order. Invoices currently carry a
// single item, stored inline on the invoice row.
func (i *Invoice) LineItems() []LineItem {
	return []LineItem{{
		Description: i.ItemDescription,
		Quantity:    i.ItemQuantity,
		Rate:        i.ItemRate,
		Total:       i.Total,
	}}
}

// InvoiceEvent is an outbox row written in the same transaction as the invoice change
// it describes, and dispatched after commit.
type InvoiceEvent struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	InvoiceID    uuid.UUID        `json:"invoiceId" db:"invoice_id"`
	UserID       uuid.UUID        `json:"userId" db:"user_id"`
	Type         InvoiceEventType `json:"type" db:"type"`
	Payload      json.RawMessage  `json:"payload" db:"payload"`
	Attempts     int              `json:"attempts" db:"attempts"`
	LastError    *string          `json:"lastError,omitempty" db:"last_error"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	DispatchedAt *time.Time       `json:"dispatchedAt,omitempty" db:"dispatched_at"`
}
