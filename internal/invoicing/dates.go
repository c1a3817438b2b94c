package invoicing

import (
	"fmt"
	"strings"
	"time"
)

// Allowed net-day offsets for an invoice due date.
var NetDayOptions = []int{0, 15, 30}

const mediumDateLayout = "Jan 2, 2006"

// FormatDate renders t in the medium en-US style, e.g. "Jan 5, 2025". Dates are shown
// in UTC so the same invoice reads identically everywhere.
func FormatDate(t time.Time) string {
	return t.UTC().Format(mediumDateLayout)
}

// FormatDateString is FormatDate for ISO 8601 input: a full RFC 3339 timestamp or a
// plain YYYY-MM-DD date.
func FormatDateString(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return FormatDate(t), nil
}

// ParseDate accepts RFC 3339 timestamps (with or without fractional seconds) and
// YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 date %q", s)
}

// DueDateLabel describes a net-days policy: 0 is "Due on Receipt", anything else "Net N".
func DueDateLabel(netDays int) string {
	if netDays == 0 {
		return "Due on Receipt"
	}
	return fmt.Sprintf("Net %d", netDays)
}

// DueOn resolves a net-days policy to the calendar day payment is due.
func DueOn(date time.Time, netDays int) time.Time {
	return date.UTC().AddDate(0, 0, netDays)
}

// ValidNetDays reports whether n is one of NetDayOptions.
func ValidNetDays(n int) bool {
	for _, opt := range NetDayOptions {
		if n == opt {
			return true
		}
	}
	return false
}
