package web

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"tourbook/internal/flow"
	"tourbook/internal/metrics"
	"tourbook/internal/models"
	"tourbook/internal/nav"
	"tourbook/internal/receipt"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Inclusions are listed on every experience page.
var Inclusions = []string{
	"Professional certified guide",
	"All safety equipment",
	"Small group experience",
	"Insurance coverage",
}

// ReceiptNotes are printed under every confirmation.
var ReceiptNotes = []string{
	"Your e-ticket has been sent to your email.",
	"Our team will contact you 24 hours before the experience.",
	"Please arrive 15 minutes before the start time.",
	"Carry a valid government ID.",
}

type catalogPage struct {
	View flow.CatalogView
}

type detailPage struct {
	View        flow.DetailView
	Description template.HTML
	Inclusions  []string
	Message     string
}

type bookingPage struct {
	View    flow.SubmissionView
	Action  string
	Message string
}

type confirmationPage struct {
	View        flow.ConfirmationView
	ReceiptPath string
	Notes       []string
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := flow.NewCatalog(s.backend, s.logger)
	c.Load(r.Context())
	c.SetQuery(r.URL.Query().Get(nav.ParamQuery))
	s.render(w, r, "catalog", http.StatusOK, catalogPage{View: c.View()})
}

// loadDetail resolves the experience and applies the selection carried in the URL.
func (s *Server) loadDetail(r *http.Request) *flow.Detail {
	d := flow.NewDetail(s.backend, s.logger, flow.WithClock(s.now))
	d.Load(r.Context(), models.ID(chi.URLParam(r, "id")))

	q := r.URL.Query()
	d.SelectDate(q.Get(nav.ParamDate))
	d.SetGuests(q.Get(nav.ParamGuests))
	return d
}

func (s *Server) renderDetail(w http.ResponseWriter, r *http.Request, d *flow.Detail, status int, message string) {
	v := d.View()
	page := detailPage{View: v, Inclusions: Inclusions, Message: message}
	if v.Experience != nil {
		page.Description = s.rich.HTML(v.Experience.LongDescription)
	}
	if code := statusFor(v.Phase); code != http.StatusOK {
		status = code
	}
	s.render(w, r, "detail", status, page)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	s.renderDetail(w, r, s.loadDetail(r), http.StatusOK, "")
}

func (s *Server) handleProceed(w http.ResponseWriter, r *http.Request) {
	d := s.loadDetail(r)
	intent, err := d.Proceed()
	if err != nil {
		s.renderDetail(w, r, d, http.StatusUnprocessableEntity, userMessage(err))
		return
	}
	http.Redirect(w, r, intent.Path(), http.StatusSeeOther)
}

func (s *Server) handleBookingForm(w http.ResponseWriter, r *http.Request) {
	intent := nav.ParseBookingIntent(chi.URLParam(r, "id"), r.URL.Query())
	sub := flow.NewSubmission(s.backend, intent, uuid.NewString(), s.logger)
	sub.Activate(r.Context())
	s.renderBooking(w, r, sub, http.StatusOK, "")
}

func (s *Server) renderBooking(w http.ResponseWriter, r *http.Request, sub *flow.Submission, status int, message string) {
	v := sub.View()
	if code := statusFor(v.LoadPhase); code != http.StatusOK {
		status = code
	}
	s.render(w, r, "booking", status, bookingPage{View: v, Action: v.Intent.Path(), Message: message})
}

func (s *Server) handleBookingSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	intent := nav.ParseBookingIntent(chi.URLParam(r, "id"), r.URL.Query())
	flowID := strings.TrimSpace(r.PostForm.Get("flow_id"))
	if flowID == "" {
		flowID = uuid.NewString()
	}

	opts := []flow.SubmissionOption{flow.WithForm(flow.FormFromValues(r.PostForm))}
	if s.guard != nil {
		opts = append(opts, flow.WithGuard(s.guard))
	}
	if s.events != nil {
		opts = append(opts, flow.WithEvents(s.events))
	}
	sub := flow.NewSubmission(s.backend, intent, flowID, s.logger, opts...)
	sub.Activate(r.Context())

	if s.guard != nil && !s.guard.Allow(r.Context(), clientKey(r)) {
		metrics.IncSubmission("rate_limited")
		sub.Reject(flow.AlertRateLimited)
		s.renderBooking(w, r, sub, http.StatusTooManyRequests, "")
		return
	}

	c, err := sub.Submit(r.Context())
	if err == nil {
		http.Redirect(w, r, c.Path(), http.StatusSeeOther)
		return
	}

	var done *flow.AlreadySubmittedError
	var verr *flow.ValidationError
	switch {
	case errors.As(err, &done):
		metrics.IncSubmission("duplicate")
		http.Redirect(w, r, done.Confirmation.Path(), http.StatusSeeOther)
	case errors.Is(err, flow.ErrSubmitInProgress):
		metrics.IncSubmission("duplicate")
		s.renderBooking(w, r, sub, http.StatusConflict, userMessage(err))
	case errors.As(err, &verr), errors.Is(err, flow.ErrTooManyGuests):
		metrics.IncSubmission("invalid")
		s.renderBooking(w, r, sub, http.StatusUnprocessableEntity, userMessage(err))
	default:
		s.renderBooking(w, r, sub, http.StatusBadGateway, "")
	}
}

func (s *Server) loadConfirmation(r *http.Request) *flow.Confirmation {
	c := flow.NewConfirmation(s.backend, s.logger)
	c.Load(r.Context(), nav.ParseConfirmationIntent(r.URL.Query()))
	return c
}

func (s *Server) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	v := s.loadConfirmation(r).View()
	s.render(w, r, "confirmation", statusFor(v.Phase), confirmationPage{
		View:        v,
		ReceiptPath: v.Intent.ReceiptPath(),
		Notes:       ReceiptNotes,
	})
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	v := s.loadConfirmation(r).View()
	switch v.Phase {
	case flow.LoadReady:
	case flow.LoadNotFound:
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	default:
		http.Error(w, "Could not load booking", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", receipt.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.FileName(v.Booking)+`"`)
	if err := receipt.Write(w, v.Booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", v.Intent.BookingID.String()).Msg("receipt export failed")
	}
}
