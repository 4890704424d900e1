package web

import (
	"errors"
	"net/http"
	"strings"

	"tourbook/internal/flow"
)

var fieldLabels = map[flow.Field]string{
	flow.FieldName:       "full name",
	flow.FieldEmail:      "email",
	flow.FieldPhone:      "phone number",
	flow.FieldCardNumber: "card number",
	flow.FieldExpiryDate: "expiry date",
	flow.FieldCVV:        "CVV",
}

// userMessage turns a flow error into copy for the page.
func userMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *flow.ValidationError
	if errors.As(err, &verr) {
		labels := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			labels = append(labels, fieldLabels[f])
		}
		return "Please fill in your " + strings.Join(labels, ", ") + "."
	}

	switch {
	case errors.Is(err, flow.ErrNoDate):
		return "Please select a date to continue."
	case errors.Is(err, flow.ErrInvalidDate):
		return "Please pick a valid date."
	case errors.Is(err, flow.ErrPastDate):
		return "Please choose today or a later date."
	case errors.Is(err, flow.ErrTooManyGuests):
		return "That many guests cannot be booked online. Please choose fewer guests."
	case errors.Is(err, flow.ErrSubmitInProgress):
		return "Your booking is already being processed. Please wait a moment."
	case errors.Is(err, flow.ErrNotLoaded):
		return "This experience could not be loaded."
	}

	return flow.AlertSubmitFailed
}

// statusFor picks the response code for a failed single-entity load.
func statusFor(phase flow.LoadPhase) int {
	switch phase {
	case flow.LoadNotFound:
		return http.StatusNotFound
	case flow.LoadFailed:
		return http.StatusBadGateway
	}
	return http.StatusOK
}
