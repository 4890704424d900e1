package flow

import (
	"errors"
	"fmt"
	"strings"

	"tourbook/internal/nav"
)

var (
	ErrSubmitInProgress = errors.New("booking submission already in progress")
	ErrAlreadySubmitted = errors.New("booking already submitted")
	ErrNoDate           = errors.New("no date selected")
	ErrInvalidDate      = errors.New("date is not a calendar date")
	ErrPastDate         = errors.New("date is in the past")
	ErrTooManyGuests    = errors.New("guest count too large to price")
	ErrNotLoaded        = errors.New("experience not loaded")
	ErrUnknownField     = errors.New("unknown form field")

	errNoRecord = errors.New("backend returned no booking record")
)

// AlreadySubmittedError carries where the earlier successful submission led.
type AlreadySubmittedError struct {
	Confirmation nav.ConfirmationIntent
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("%s: booking %s", ErrAlreadySubmitted, e.Confirmation.BookingID)
}

func (e *AlreadySubmittedError) Is(target error) bool { return target == ErrAlreadySubmitted }

// ValidationError lists required fields left blank.
type ValidationError struct {
	Fields []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return "missing required fields: " + strings.Join(names, ", ")
}
