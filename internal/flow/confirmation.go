package flow

import (
	"context"
	"sync"

	"tourbook/internal/models"
	"tourbook/internal/nav"

	"github.com/rs/zerolog"
)

type BookingGetter interface {
	GetBooking(ctx context.Context, id models.ID) (*models.BookingRecord, error)
}

type ConfirmationView struct {
	Phase   LoadPhase
	Intent  nav.ConfirmationIntent
	Booking *models.BookingRecord
	Err     error
}

// Confirmation fetches a created booking once. A missing id or an unknown booking
// ends in LoadNotFound; other failures end in LoadFailed. Neither is retried.
type Confirmation struct {
	getter  BookingGetter
	logger  *zerolog.Logger
	tracker Tracker[models.ID]

	mu      sync.Mutex
	intent  nav.ConfirmationIntent
	phase   LoadPhase
	booking *models.BookingRecord
	err     error
}

func NewConfirmation(getter BookingGetter, logger *zerolog.Logger) *Confirmation {
	return &Confirmation{getter: getter, logger: logger, phase: LoadLoading}
}

func (c *Confirmation) Load(ctx context.Context, intent nav.ConfirmationIntent) {
	id := intent.BookingID
	c.tracker.Retarget(id)
	c.mu.Lock()
	c.intent = intent
	c.booking = nil
	c.err = nil
	if id.IsZero() {
		c.phase = LoadNotFound
		c.mu.Unlock()
		return
	}
	c.phase = LoadLoading
	c.mu.Unlock()

	rec, err := c.getter.GetBooking(ctx, id)
	if err == nil && rec == nil {
		err = errNoRecord
	}

	var failed bool
	c.tracker.ApplyIf(id, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.err = err
		if err == errNoRecord {
			c.phase = LoadNotFound
		} else {
			c.phase = loadPhaseFor(err)
		}
		if err == nil {
			c.booking = rec
		}
		failed = c.phase == LoadFailed
	})
	if failed {
		c.logger.Error().Err(err).Str("booking_id", id.String()).Msg("booking fetch failed")
	}
}

func (c *Confirmation) View() ConfirmationView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConfirmationView{Phase: c.phase, Intent: c.intent, Booking: c.booking, Err: c.err}
}
