// Package render turns an invoice into a fixed-layout A4 PDF.
//
// Output is a pure function of the invoice: document dates are pinned to the invoice
// date and the internal catalogs are sorted, so two renders of the same invoice are
// byte-identical.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"invoicehub/internal/models"

	"github.com/go-pdf/fpdf"
)

// ContentType is the MIME type of rendered documents.
const ContentType = "application/pdf"

var ErrNilInvoice = errors.New("render: nil invoice")

// Renderer writes a rendered invoice to w. Nothing is written when rendering fails.
type Renderer interface {
	Render(w io.Writer, inv *models.Invoice) error
}

type Option func(*FPDFRenderer)

// WithCompression toggles page stream compression. Uncompressed output keeps the
// text operators readable, which tests rely on.
func WithCompression(on bool) Option {
	return func(r *FPDFRenderer) { r.compress = on }
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(r *FPDFRenderer) { r.author = author }
}

// FPDFRenderer lays out invoices with go-pdf/fpdf. It holds no per-render state and
// is safe for concurrent use.
type FPDFRenderer struct {
	compress bool
	author   string
}

func NewFPDFRenderer(opts ...Option) *FPDFRenderer {
	r := &FPDFRenderer{compress: true, author: "invoicehub"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out inv and copies the finished document to w.
func (r *FPDFRenderer) Render(w io.Writer, inv *models.Invoice) error {
	if inv == nil {
		return ErrNilInvoice
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(inv.Date.UTC())
	pdf.SetModificationDate(inv.Date.UTC())
	pdf.SetAuthor(r.author, true)
	pdf.SetTitle(inv.InvoiceName, true)
	pdf.SetAutoPageBreak(false, 0)

	newLayout(pdf, inv).draw()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.ID, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.ID, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var defaultRenderer = NewFPDFRenderer()

// PDF renders inv with the default renderer, or with one built from opts.
func PDF(inv *models.Invoice, opts ...Option) ([]byte, error) {
	r := defaultRenderer
	if len(opts) > 0 {
		r = NewFPDFRenderer(opts...)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, inv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
