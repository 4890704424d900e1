// Package pricing computes the client-side quote shown before a booking is submitted.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"tourbook/internal/models"
)

// Quote is presentation-derived and never authoritative.
type Quote struct {
	UnitPrice  int64
	Guests     int
	Subtotal   int64
	ServiceFee int64
	Total      int64
	// Overflow is set when price × guests does not fit in int64; amounts are then zero.
	Overflow bool
}

// Compute returns subtotal = price × guests and total = subtotal + service fee.
// Guests below 1 are clamped to 1.
func Compute(price int64, guests int) Quote {
	if guests < 1 {
		guests = 1
	}
	n := int64(guests)
	if price > math.MaxInt64/n || price < math.MinInt64/n {
		return Quote{UnitPrice: price, Guests: guests, ServiceFee: models.ServiceFee, Overflow: true}
	}
	subtotal := price * n
	if subtotal > math.MaxInt64-models.ServiceFee {
		return Quote{UnitPrice: price, Guests: guests, ServiceFee: models.ServiceFee, Overflow: true}
	}
	return Quote{
		UnitPrice:  price,
		Guests:     guests,
		Subtotal:   subtotal,
		ServiceFee: models.ServiceFee,
		Total:      subtotal + models.ServiceFee,
	}
}

// NormalizeGuests coerces free-form input to a guest count of at least 1.
// Leading digits are honoured ("3 people" is 3); anything non-numeric is 1.
func NormalizeGuests(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return 1
		}
		// overflow on a positive count; keep it bounded to the platform int
		return int(^uint(0) >> 1)
	}
	if n < 1 {
		return 1
	}
	return n
}
