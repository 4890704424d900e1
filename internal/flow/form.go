package flow

import (
	"net/url"
	"strings"

	"tourbook/internal/models"
	"tourbook/internal/nav"
)

// Field names match the booking form inputs.
type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldSpecialRequests Field = "specialRequests"
	FieldPromo           Field = "promo"
	FieldCardNumber      Field = "cardNumber"
	FieldExpiryDate      Field = "expiryDate"
	FieldCVV             Field = "cvv"
)

// Fields lists every form input in display order.
var Fields = []Field{
	FieldName, FieldEmail, FieldPhone, FieldSpecialRequests,
	FieldPromo, FieldCardNumber, FieldExpiryDate, FieldCVV,
}

var requiredFields = []Field{
	FieldName, FieldEmail, FieldPhone, FieldCardNumber, FieldExpiryDate, FieldCVV,
}

// Form is the booking form as one immutable record. Change it through With.
type Form struct {
	Name            string
	Email           string
	Phone           string
	SpecialRequests string
	Promo           string
	CardNumber      string
	ExpiryDate      string
	CVV             string
}

// With returns a copy of f with one field replaced.
func (f Form) With(field Field, value string) (Form, error) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldSpecialRequests:
		f.SpecialRequests = value
	case FieldPromo:
		f.Promo = value
	case FieldCardNumber:
		f.CardNumber = value
	case FieldExpiryDate:
		f.ExpiryDate = value
	case FieldCVV:
		f.CVV = value
	default:
		return f, ErrUnknownField
	}
	return f, nil
}

func (f Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldSpecialRequests:
		return f.SpecialRequests
	case FieldPromo:
		return f.Promo
	case FieldCardNumber:
		return f.CardNumber
	case FieldExpiryDate:
		return f.ExpiryDate
	case FieldCVV:
		return f.CVV
	}
	return ""
}

// FormFromValues reads known fields from posted values and ignores the rest.
func FormFromValues(values url.Values) Form {
	var f Form
	for _, field := range Fields {
		f, _ = f.With(field, values.Get(string(field)))
	}
	return f
}

// Missing returns the required fields that are blank.
func (f Form) Missing() []Field {
	var missing []Field
	for _, field := range requiredFields {
		if strings.TrimSpace(f.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func (f Form) Validate() error {
	if missing := f.Missing(); len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// PromoOrDefault substitutes the fallback code only when promo is blank.
func PromoOrDefault(promo string) string {
	if strings.TrimSpace(promo) == "" {
		return models.DefaultPromoCode
	}
	return promo
}

// Submission builds the outbound payload for an intent.
func (f Form) Submission(intent nav.BookingIntent) models.BookingSubmission {
	quantity := intent.Guests
	if quantity < 1 {
		quantity = 1
	}
	return models.BookingSubmission{
		Name:            f.Name,
		Email:           f.Email,
		Phone:           f.Phone,
		SpecialRequests: f.SpecialRequests,
		ExperienceID:    intent.ExperienceID,
		Quantity:        quantity,
		BookingDate:     intent.Date,
		PromoCode:       PromoOrDefault(f.Promo),
		CardNumber:      f.CardNumber,
		ExpiryDate:      f.ExpiryDate,
		CVV:             f.CVV,
	}
}
