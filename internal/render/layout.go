package render

import (
	"fmt"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/models"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily = "Helvetica"

	marginX     = 20.0
	ruleEndX    = 165.0
	metaX       = 110.0
	colQuantity = 85.0
	colQtyValue = 95.0
	colRate     = 120.0
	colTotal    = 150.0

	titleY    = 20.0
	fromY     = 35.0
	billToY   = 60.0
	tableTopY = 85.0
	lineStep  = 5.0
	rowStep   = 10.0

	// Rows whose baseline would pass pageLimitY go to a new page, where the table
	// header is repeated at contTopY.
	pageLimitY = 270.0
	contTopY   = 20.0
	bottomY    = 287.0

	noteWidth = 170.0
)

type layout struct {
	pdf   *fpdf.Fpdf
	inv   *models.Invoice
	items []models.LineItem
	tr    func(string) string
	y     float64
}

func newLayout(pdf *fpdf.Fpdf, inv *models.Invoice) *layout {
	return &layout{
		pdf:   pdf,
		inv:   inv,
		items: inv.LineItems(),
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (l *layout) draw() {
	l.pdf.AddPage()
	l.header()
	l.parties()
	l.table()
	l.totals()
	l.note()
}

func (l *layout) font(style string, size float64) {
	l.pdf.SetFont(fontFamily, style, size)
}

func (l *layout) text(x, y float64, s string) {
	l.pdf.Text(x, y, l.tr(s))
}

func (l *layout) lines(x, y float64, ss ...string) {
	for i, s := range ss {
		l.text(x, y+float64(i)*lineStep, s)
	}
}

func (l *layout) header() {
	l.font("", 24)
	l.text(marginX, titleY, l.inv.InvoiceName)

	l.font("", 10)
	l.lines(metaX, fromY,
		fmt.Sprintf("Invoice Number: #%d", l.inv.InvoiceNumber),
		"Date: "+invoicing.FormatDate(l.inv.Date),
		"Due Date: "+invoicing.DueDateLabel(l.inv.DueDate),
	)
}

func (l *layout) parties() {
	l.font("B", 12)
	l.text(marginX, fromY, "From:")
	l.font("", 10)
	l.lines(marginX, fromY+lineStep, l.inv.FromName, l.inv.FromEmail, l.inv.FromAddress)

	l.font("B", 12)
	l.text(marginX, billToY, "Bill to:")
	l.font("", 10)
	l.lines(marginX, billToY+lineStep, l.inv.ClientName, l.inv.ClientEmail, l.inv.ClientAddress)
}

// tableHeader draws the column captions at top and the separating rule under them,
// then places the cursor on the first row baseline.
func (l *layout) tableHeader(top float64) {
	l.font("B", 10)
	l.text(marginX, top, "Description")
	l.text(colQuantity, top, "Quantity")
	l.text(colRate, top, "Rate")
	l.text(colTotal, top, "Total")
	l.pdf.Line(marginX, top+rowStep, ruleEndX, top+rowStep)
	l.y = top + rowStep + lineStep
}

func (l *layout) table() {
	l.tableHeader(tableTopY)
	for _, item := range l.items {
		if l.y > pageLimitY {
			l.pdf.AddPage()
			l.tableHeader(contTopY)
		}
		l.font("", 10)
		l.text(marginX, l.y, item.Description)
		l.text(colQtyValue, l.y, item.Quantity.String())
		l.text(colRate, l.y, invoicing.FormatCurrency(item.Rate, l.inv.Currency))
		l.text(colTotal, l.y, invoicing.FormatCurrency(item.Total, l.inv.Currency))
		l.y += rowStep
	}
	l.pdf.Line(marginX, l.y, ruleEndX, l.y)
}

func (l *layout) totals() {
	if l.y+rowStep > pageLimitY {
		l.pdf.AddPage()
		l.y = contTopY - rowStep
	}
	l.font("B", 10)
	l.text(colRate, l.y+rowStep, fmt.Sprintf("Total (%s)", l.inv.Currency))
	l.text(colTotal, l.y+rowStep, invoicing.FormatCurrency(l.inv.Total, l.inv.Currency))
}

func (l *layout) note() {
	if l.inv.Note == "" {
		return
	}
	y := l.y + 25
	if y > pageLimitY {
		l.pdf.AddPage()
		y = contTopY
	}
	l.font("B", 12)
	l.text(marginX, y, "Note:")

	l.font("", 10)
	y += lineStep
	// The note is already cp1252 here, so it is split byte-wise.
	for _, line := range l.pdf.SplitLines([]byte(l.tr(l.inv.Note)), noteWidth) {
		if y > bottomY {
			l.pdf.AddPage()
			y = contTopY
		}
		l.pdf.Text(marginX, y, string(line))
		y += lineStep
	}
}
