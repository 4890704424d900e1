// Package nav defines the typed values carried between storefront pages in URLs.
package nav

import (
	"net/url"
	"strconv"
	"strings"

	"tourbook/internal/models"
	"tourbook/internal/pricing"
)

// Query parameter names shared by the pages.
const (
	ParamGuests    = "guests"
	ParamDate      = "date"
	ParamTourID    = "tourId"
	ParamBookingID = "bookingId"
	ParamQuery     = "q"
)

// TourPath is the detail page of one experience.
func TourPath(id models.ID) string {
	return "/tour/" + url.PathEscape(id.String())
}

// BookingIntent is the Detail → Submission selection.
type BookingIntent struct {
	ExperienceID models.ID
	Date         string
	Guests       int
}

// Path encodes the intent as /booking/{id}?guests=&date=.
func (b BookingIntent) Path() string {
	q := url.Values{}
	guests := b.Guests
	if guests < 1 {
		guests = 1
	}
	q.Set(ParamGuests, strconv.Itoa(guests))
	q.Set(ParamDate, b.Date)
	return "/booking/" + url.PathEscape(b.ExperienceID.String()) + "?" + q.Encode()
}

// ParseBookingIntent decodes the intent: guests defaults to 1 when missing or
// invalid, date defaults to "".
func ParseBookingIntent(id string, q url.Values) BookingIntent {
	return BookingIntent{
		ExperienceID: models.ID(strings.TrimSpace(id)),
		Date:         q.Get(ParamDate),
		Guests:       pricing.NormalizeGuests(q.Get(ParamGuests)),
	}
}

// ConfirmationIntent is the Submission → Confirmation hand-off.
type ConfirmationIntent struct {
	TourID    models.ID
	BookingID models.ID
}

func (c ConfirmationIntent) Path() string {
	q := url.Values{}
	q.Set(ParamTourID, c.TourID.String())
	q.Set(ParamBookingID, c.BookingID.String())
	return "/confirmation?" + q.Encode()
}

// ReceiptPath is the spreadsheet export for the same booking.
func (c ConfirmationIntent) ReceiptPath() string {
	q := url.Values{}
	q.Set(ParamBookingID, c.BookingID.String())
	return "/confirmation/receipt.xlsx?" + q.Encode()
}

func ParseConfirmationIntent(q url.Values) ConfirmationIntent {
	return ConfirmationIntent{
		TourID:    models.ID(strings.TrimSpace(q.Get(ParamTourID))),
		BookingID: models.ID(strings.TrimSpace(q.Get(ParamBookingID))),
	}
}
