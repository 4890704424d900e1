package format

import (
	"strconv"
	"strings"
	"time"

	"tourbook/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Currency formats whole currency units with the rupee symbol and en-IN grouping.
// Example: Currency(4500) => "₹4,500"
func Currency(amount int64) string {
	if amount < 0 {
		return "-" + models.CurrencySymbol + printer.Sprintf("%d", -amount)
	}
	return models.CurrencySymbol + printer.Sprintf("%d", amount)
}

// Date renders an ISO calendar date as "20 Dec 2025". Unparseable input is returned as is.
func Date(iso string) string {
	s := strings.TrimSpace(iso)
	if s == "" {
		return ""
	}
	layout := models.DateLayout
	if len(s) > len(layout) {
		// timestamps from the backend; the calendar date prefix is what matters
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format("2 Jan 2006")
		}
		s = s[:len(layout)]
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return iso
	}
	return t.Format("2 Jan 2006")
}

// Guests renders "1 guest" or "N guests".
func Guests(n int) string {
	if n == 1 {
		return "1 guest"
	}
	return strconv.Itoa(n) + " guests"
}

// QuoteLine renders "₹1,200 × 2 guests".
func QuoteLine(unit int64, guests int) string {
	return Currency(unit) + " × " + Guests(guests)
}
