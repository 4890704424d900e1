package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"tourbook/internal/backend"
	"tourbook/internal/models"
	"tourbook/internal/nav"
	"tourbook/internal/pricing"

	"github.com/rs/zerolog"
)

type ExperienceGetter interface {
	GetExperience(ctx context.Context, id models.ID) (*models.Experience, error)
}

// LoadPhase is the state of a single-entity fetch.
type LoadPhase string

const (
	LoadLoading  LoadPhase = "loading"
	LoadReady    LoadPhase = "ready"
	LoadNotFound LoadPhase = "not_found"
	LoadFailed   LoadPhase = "failed"
)

func loadPhaseFor(err error) LoadPhase {
	switch {
	case err == nil:
		return LoadReady
	case errors.Is(err, backend.ErrNotFound):
		return LoadNotFound
	default:
		return LoadFailed
	}
}

type DetailView struct {
	Phase      LoadPhase
	Experience *models.Experience
	Err        error
	Date       string
	Guests     int
	MinDate    string
	Quote      pricing.Quote
	CanProceed bool
	Intent     nav.BookingIntent
}

// Detail resolves one experience and holds the date and guest selection.
type Detail struct {
	getter  ExperienceGetter
	logger  *zerolog.Logger
	now     func() time.Time
	tracker Tracker[models.ID]

	mu     sync.Mutex
	id     models.ID
	phase  LoadPhase
	exp    *models.Experience
	err    error
	date   string
	guests int
}

type DetailOption func(*Detail)

// WithClock replaces time.Now for the minimum-date rule.
func WithClock(now func() time.Time) DetailOption {
	return func(d *Detail) { d.now = now }
}

func NewDetail(getter ExperienceGetter, logger *zerolog.Logger, opts ...DetailOption) *Detail {
	d := &Detail{
		getter: getter,
		logger: logger,
		now:    time.Now,
		phase:  LoadLoading,
		guests: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detail) Load(ctx context.Context, id models.ID) {
	d.tracker.Retarget(id)
	d.mu.Lock()
	d.id = id
	d.phase = LoadLoading
	d.exp = nil
	d.err = nil
	d.mu.Unlock()

	exp, err := d.getter.GetExperience(ctx, id)
	if err == nil && exp == nil {
		err = backend.ErrNotFound
	}
	if err == nil {
		err = exp.Validate()
	}

	applied := d.tracker.ApplyIf(id, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.phase = loadPhaseFor(err)
		d.err = err
		if err == nil {
			d.exp = exp
		}
	})
	if err != nil && applied {
		d.logger.Error().Err(err).Str("experience_id", id.String()).Msg("experience fetch failed")
	}
}

func (d *Detail) SelectDate(date string) {
	d.mu.Lock()
	d.date = date
	d.mu.Unlock()
}

// SetGuests accepts raw user input and normalizes it.
func (d *Detail) SetGuests(raw string) {
	n := pricing.NormalizeGuests(raw)
	d.mu.Lock()
	d.guests = n
	d.mu.Unlock()
}

// MinDate is today's calendar date in the clock's location.
func (d *Detail) MinDate() string {
	return d.now().Format(models.DateLayout)
}

func (d *Detail) Proceed() (nav.BookingIntent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.proceedLocked()
}

func (d *Detail) proceedLocked() (nav.BookingIntent, error) {
	if d.phase != LoadReady || d.exp == nil {
		return nav.BookingIntent{}, ErrNotLoaded
	}
	if err := checkDate(d.date, d.now()); err != nil {
		return nav.BookingIntent{}, err
	}
	if pricing.Compute(d.exp.Price, d.guests).Overflow {
		return nav.BookingIntent{}, ErrTooManyGuests
	}
	return nav.BookingIntent{ExperienceID: d.exp.ID, Date: d.date, Guests: d.guests}, nil
}

func (d *Detail) View() DetailView {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := DetailView{
		Phase:      d.phase,
		Experience: d.exp,
		Err:        d.err,
		Date:       d.date,
		Guests:     d.guests,
		MinDate:    d.now().Format(models.DateLayout),
	}
	if d.exp != nil {
		v.Quote = pricing.Compute(d.exp.Price, d.guests)
	}
	intent, err := d.proceedLocked()
	v.CanProceed = err == nil
	v.Intent = intent
	return v
}

// checkDate requires an ISO date that is today or later relative to now.
func checkDate(date string, now time.Time) error {
	if date == "" {
		return ErrNoDate
	}
	day, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return ErrInvalidDate
	}
	y, m, dd := now.Date()
	today := time.Date(y, m, dd, 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return ErrPastDate
	}
	return nil
}

