package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tourbook/internal/backend"
	"tourbook/internal/domain"
	"tourbook/internal/events"
	"tourbook/internal/models"
	"tourbook/internal/nav"
	"tourbook/internal/pricing"

	"github.com/rs/zerolog"
)

const (
	LabelSubmit = "Pay and Confirm"
	LabelBusy   = "Processing..."

	AlertSubmitFailed = "Something went wrong! Please try again."
	AlertRateLimited  = "Too many booking attempts. Please wait a minute and try again."
)

type BookingCreator interface {
	GetExperience(ctx context.Context, id models.ID) (*models.Experience, error)
	CreateBooking(ctx context.Context, sub *models.BookingSubmission) (models.ID, error)
}

// Guard extends the in-process submit lock across requests for the same flow id.
// Begin returns nil, ErrSubmitInProgress or an *AlreadySubmittedError.
type Guard interface {
	Begin(ctx context.Context, flowID string, experienceID models.ID) error
	Finish(ctx context.Context, flowID string, c nav.ConfirmationIntent)
	Release(ctx context.Context, flowID string)
}

type SubmissionView struct {
	FlowID       string
	LoadPhase    LoadPhase
	Experience   *models.Experience
	LoadErr      error
	Intent       nav.BookingIntent
	Form         Form
	Quote        pricing.Quote
	Phase        string
	Busy         bool
	SubmitLabel  string
	Alert        string
	Missing      []Field
	Confirmation *nav.ConfirmationIntent
}

// Submission is one instance of the booking form: idle → submitting → succeeded,
// falling back to idle with an alert on failure.
type Submission struct {
	backend BookingCreator
	guard   Guard
	events  domain.EventPublisher
	logger  *zerolog.Logger
	flowID  string
	intent  nav.BookingIntent
	tracker Tracker[models.ID]

	mu           sync.Mutex
	loadPhase    LoadPhase
	exp          *models.Experience
	loadErr      error
	form         Form
	phase        string
	alert        string
	missing      []Field
	confirmation *nav.ConfirmationIntent
}

type SubmissionOption func(*Submission)

func WithGuard(g Guard) SubmissionOption {
	return func(s *Submission) { s.guard = g }
}

func WithEvents(p domain.EventPublisher) SubmissionOption {
	return func(s *Submission) { s.events = p }
}

func WithForm(f Form) SubmissionOption {
	return func(s *Submission) { s.form = f }
}

func NewSubmission(backend BookingCreator, intent nav.BookingIntent, flowID string, logger *zerolog.Logger, opts ...SubmissionOption) *Submission {
	s := &Submission{
		backend:   backend,
		logger:    logger,
		flowID:    flowID,
		intent:    intent,
		loadPhase: LoadLoading,
		phase:     models.PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Submission) FlowID() string { return s.flowID }

// Activate re-fetches the experience named by the intent.
func (s *Submission) Activate(ctx context.Context) {
	id := s.intent.ExperienceID
	s.tracker.Retarget(id)

	exp, err := s.backend.GetExperience(ctx, id)
	if err == nil && exp == nil {
		err = backend.ErrNotFound
	}
	if err == nil {
		err = exp.Validate()
	}

	s.tracker.ApplyIf(id, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loadPhase = loadPhaseFor(err)
		s.loadErr = err
		if err == nil {
			s.exp = exp
		}
	})
	if err != nil {
		s.logger.Error().Err(err).Str("experience_id", id.String()).Msg("booking page experience fetch failed")
	}
}

// SetField applies one input change through the form reducer.
func (s *Submission) SetField(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.form.With(field, value)
	if err != nil {
		return err
	}
	s.form = f
	return nil
}

func (s *Submission) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Reject shows an alert without attempting a submission.
func (s *Submission) Reject(alert string) {
	s.mu.Lock()
	s.alert = alert
	s.mu.Unlock()
}

// Submit performs at most one create-booking call per flow instance at a time.
func (s *Submission) Submit(ctx context.Context) (nav.ConfirmationIntent, error) {
	s.mu.Lock()
	switch s.phase {
	case models.PhaseSubmitting:
		s.mu.Unlock()
		return nav.ConfirmationIntent{}, ErrSubmitInProgress
	case models.PhaseSucceeded:
		c := *s.confirmation
		s.mu.Unlock()
		return c, &AlreadySubmittedError{Confirmation: c}
	}
	if s.exp == nil {
		s.mu.Unlock()
		return nav.ConfirmationIntent{}, ErrNotLoaded
	}
	s.alert = ""
	s.missing = s.form.Missing()
	if err := s.form.Validate(); err != nil {
		s.mu.Unlock()
		return nav.ConfirmationIntent{}, err
	}
	sub := s.form.Submission(s.intent)
	if pricing.Compute(s.exp.Price, sub.Quantity).Overflow {
		s.mu.Unlock()
		return nav.ConfirmationIntent{}, ErrTooManyGuests
	}
	s.phase = models.PhaseSubmitting
	s.mu.Unlock()

	if s.guard != nil {
		if err := s.guard.Begin(ctx, s.flowID, sub.ExperienceID); err != nil {
			var done *AlreadySubmittedError
			s.mu.Lock()
			if errors.As(err, &done) {
				s.phase = models.PhaseSucceeded
				s.confirmation = &done.Confirmation
			} else {
				s.phase = models.PhaseIdle
			}
			s.mu.Unlock()
			return nav.ConfirmationIntent{}, err
		}
	}

	payload := events.BookingEventPayload{
		FlowID:       s.flowID,
		ExperienceID: sub.ExperienceID.String(),
		Quantity:     sub.Quantity,
		Date:         sub.BookingDate,
	}
	s.publish(events.EventBookingSubmitted, payload)

	id, err := s.backend.CreateBooking(ctx, &sub)
	if err != nil {
		s.mu.Lock()
		s.phase = models.PhaseIdle
		s.alert = AlertSubmitFailed
		s.mu.Unlock()
		if s.guard != nil {
			s.guard.Release(ctx, s.flowID)
		}
		payload.Error = err.Error()
		s.publish(events.EventBookingFailed, payload)
		s.logger.Warn().Err(err).Str("flow_id", s.flowID).Msg("booking submission failed")
		return nav.ConfirmationIntent{}, fmt.Errorf("create booking: %w", err)
	}

	c := nav.ConfirmationIntent{TourID: sub.ExperienceID, BookingID: id}
	s.mu.Lock()
	s.phase = models.PhaseSucceeded
	s.confirmation = &c
	s.mu.Unlock()
	if s.guard != nil {
		s.guard.Finish(ctx, s.flowID, c)
	}
	payload.BookingID = id.String()
	s.publish(events.EventBookingSucceeded, payload)
	return c, nil
}

func (s *Submission) publish(eventType string, payload events.BookingEventPayload) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event handler failed")
	}
}

func (s *Submission) View() SubmissionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SubmissionView{
		FlowID:       s.flowID,
		LoadPhase:    s.loadPhase,
		Experience:   s.exp,
		LoadErr:      s.loadErr,
		Intent:       s.intent,
		Form:         s.form,
		Phase:        s.phase,
		Busy:         s.phase == models.PhaseSubmitting,
		SubmitLabel:  LabelSubmit,
		Alert:        s.alert,
		Missing:      s.missing,
		Confirmation: s.confirmation,
	}
	if v.Busy {
		v.SubmitLabel = LabelBusy
	}
	if s.exp != nil {
		v.Quote = pricing.Compute(s.exp.Price, s.intent.Guests)
	}
	return v
}
