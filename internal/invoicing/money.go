// Package invoicing holds the derivations every consumer of an invoice must agree on:
// the line total, money and date formatting, the due-date label and the validation
// rules for invoice and profile input. Nothing in this package performs I/O.
package invoicing

import (
	"strings"

	"invoicehub/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyPlaces is the number of fraction digits used for every stored and displayed amount.
const MoneyPlaces = 2

var currencySymbols = map[models.Currency]string{
	models.CurrencyUSD: "$",
	models.CurrencyEUR: "€",
}

var printer = message.NewPrinter(language.AmericanEnglish)

// ComputeTotal returns quantity * rate rounded to cents. Negative inputs count as zero.
func ComputeTotal(quantity, rate decimal.Decimal) decimal.Decimal {
	return nonNegative(quantity).Mul(nonNegative(rate)).Round(MoneyPlaces)
}

// ComputeTotalInput is ComputeTotal over raw form input; blank or non-numeric values
// contribute zero instead of failing.
func ComputeTotalInput(quantity, rate string) decimal.Decimal {
	return ComputeTotal(ParseAmount(quantity), ParseAmount(rate))
}

// ParseAmount coerces s to a non-negative decimal. Anything unparsable is zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return nonNegative(d)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FormatCurrency renders amount for display in the given currency.
//
// USD and EUR use the en-US currency style ("$1,234.50", "€1,234.50"). SLSH is not an
// ISO 4217 code, so no locale data exists for it: it is printed as a fixed two-decimal
// number followed by the code ("1234.50 SLSH"). Other ISO codes print as
// "GBP 1,234.50"; unknown non-ISO codes get the SLSH treatment.
func FormatCurrency(amount decimal.Decimal, code models.Currency) string {
	rounded := amount.Round(MoneyPlaces)

	if symbol, ok := currencySymbols[code]; ok {
		return signed(rounded, symbol+groupDecimal(rounded.Abs()))
	}
	if _, err := currency.ParseISO(string(code)); err == nil && code != models.CurrencySLSH {
		return signed(rounded, string(code)+" "+groupDecimal(rounded.Abs()))
	}
	return rounded.StringFixed(MoneyPlaces) + " " + string(code)
}

// groupDecimal formats a non-negative, cent-rounded amount with thousands separators.
// Only the whole part goes through the printer, so no digits are lost to float64.
func groupDecimal(d decimal.Decimal) string {
	fixed := d.StringFixed(MoneyPlaces)
	_, frac, _ := strings.Cut(fixed, ".")
	whole := d.Truncate(0).BigInt()
	if !whole.IsInt64() {
		return fixed
	}
	return printer.Sprint(number.Decimal(whole.Int64())) + "." + frac
}

func signed(d decimal.Decimal, formatted string) string {
	if d.IsNegative() {
		return "-" + formatted
	}
	return formatted
}
