package flow

import (
	"net/url"
	"strconv"
	"testing"

	"tourbook/internal/models"
	"tourbook/internal/nav"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledForm(t *testing.T) Form {
	t.Helper()
	return FormFromValues(url.Values{
		"name":       {"Asha Rao"},
		"email":      {"asha@example.com"},
		"phone":      {"+91 98450 00000"},
		"cardNumber": {"4111 1111 1111 1111"},
		"expiryDate": {"12/30"},
		"cvv":        {"123"},
	})
}

func TestForm_With(t *testing.T) {
	var f Form
	next, err := f.With(FieldEmail, "a@b.c")
	require.NoError(t, err)

	assert.Equal(t, "", f.Email, "receiver must be unchanged")
	assert.Equal(t, "a@b.c", next.Email)

	for _, field := range Fields {
		got, err := Form{}.With(field, "v-"+string(field))
		require.NoError(t, err)
		assert.Equal(t, "v-"+string(field), got.Get(field))
	}

	_, err = f.With("coupon", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestForm_Validate(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		f := filledForm(t)
		assert.Empty(t, f.Missing())
		assert.NoError(t, f.Validate())
	})

	t.Run("OptionalFieldsMayBeBlank", func(t *testing.T) {
		f := filledForm(t)
		assert.Equal(t, "", f.SpecialRequests)
		assert.Equal(t, "", f.Promo)
		assert.NoError(t, f.Validate())
	})

	t.Run("Missing", func(t *testing.T) {
		f, _ := filledForm(t).With(FieldCVV, "  ")
		f, _ = f.With(FieldName, "")

		var verr *ValidationError
		require.ErrorAs(t, f.Validate(), &verr)
		assert.Equal(t, []Field{FieldName, FieldCVV}, verr.Fields)
		assert.Equal(t, "missing required fields: name, cvv", verr.Error())
	})
}

func TestForm_Submission(t *testing.T) {
	intent := nav.BookingIntent{ExperienceID: "42", Date: "2025-12-20", Guests: 2}

	t.Run("BlankPromoUsesFallback", func(t *testing.T) {
		sub := filledForm(t).Submission(intent)
		assert.Equal(t, models.DefaultPromoCode, sub.PromoCode)
		assert.Equal(t, "HOLIDAY2025", sub.PromoCode)
	})

	t.Run("WhitespacePromoIsBlank", func(t *testing.T) {
		f, _ := filledForm(t).With(FieldPromo, "   ")
		assert.Equal(t, "HOLIDAY2025", f.Submission(intent).PromoCode)
	})

	t.Run("UserPromoVerbatim", func(t *testing.T) {
		f, _ := filledForm(t).With(FieldPromo, "SAVE10")
		assert.Equal(t, "SAVE10", f.Submission(intent).PromoCode)
	})

	t.Run("CommercialFields", func(t *testing.T) {
		sub := filledForm(t).Submission(intent)
		assert.Equal(t, models.ID("42"), sub.ExperienceID)
		assert.Equal(t, 2, sub.Quantity)
		assert.Equal(t, "2025-12-20", sub.BookingDate)
		assert.Equal(t, "4111 1111 1111 1111", sub.CardNumber)
		assert.Equal(t, "12/30", sub.ExpiryDate)
	})

	t.Run("QuantityAtLeastOne", func(t *testing.T) {
		sub := filledForm(t).Submission(nav.BookingIntent{ExperienceID: "42"})
		assert.Equal(t, 1, sub.Quantity)
	})
}

func TestPromoOrDefault(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: models.DefaultPromoCode},
		{in: "  ", want: models.DefaultPromoCode},
		{in: "\t\n", want: models.DefaultPromoCode},
		{in: "SAVE10", want: "SAVE10"},
		{in: " SAVE10 ", want: " SAVE10 "},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, PromoOrDefault(tt.in))
		})
	}
}
