package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tourbook/internal/database"
	"tourbook/internal/metrics"
	"tourbook/internal/models"
)

type createdBooking struct {
	ID    models.ID `json:"id"`
	RefID string    `json:"refId"`
}

type createResponse struct {
	Success bool           `json:"success"`
	Data    createdBooking `json:"data"`
}

func (s *HTTPServer) handleListExperiences(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_experiences")

	list, err := s.store.ListExperiences(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list experiences failed")
		writeError(w, http.StatusInternalServerError, "failed to list experiences")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleGetExperience(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_experience")

	exp, err := s.store.GetExperience(r.Context(), models.ID(r.PathValue("id")))
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "experience not found")
	case err != nil:
		s.logger.Error().Err(err).Str("experience_id", r.PathValue("id")).Msg("get experience failed")
		writeError(w, http.StatusInternalServerError, "failed to load experience")
	default:
		writeJSON(w, http.StatusOK, exp)
	}
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")

	var sub models.BookingSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateSubmission(&sub); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	rec, err := s.store.CreateBooking(r.Context(), &sub)
	switch {
	case errors.Is(err, database.ErrUnknownExperience):
		writeError(w, http.StatusBadRequest, "unknown experience")
		return
	case errors.Is(err, database.ErrTotalOverflow):
		writeError(w, http.StatusBadRequest, "quantity too large")
		return
	case err != nil:
		s.logger.Error().Err(err).Str("experience_id", sub.ExperienceID.String()).Msg("create booking failed")
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	s.logger.Info().
		Str("booking_id", rec.ID.String()).
		Str("ref_id", rec.RefID).
		Str("experience_id", sub.ExperienceID.String()).
		Int("quantity", rec.Quantity).
		Int64("total", rec.Total).
		Msg("booking created")
	writeJSON(w, http.StatusCreated, createResponse{
		Success: true,
		Data:    createdBooking{ID: rec.ID, RefID: rec.RefID},
	})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_booking")

	rec, err := s.store.GetBooking(r.Context(), models.ID(r.PathValue("id")))
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case err != nil:
		s.logger.Error().Err(err).Str("booking_id", r.PathValue("id")).Msg("get booking failed")
		writeError(w, http.StatusInternalServerError, "failed to load booking")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

// validateSubmission returns the first problem with sub, or "".
func validateSubmission(sub *models.BookingSubmission) string {
	required := []struct {
		name  string
		value string
	}{
		{"name", sub.Name},
		{"email", sub.Email},
		{"phone", sub.Phone},
		{"cardNumber", sub.CardNumber},
		{"expiryDate", sub.ExpiryDate},
		{"cvv", sub.CVV},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "missing required fields: " + strings.Join(missing, ", ")
	}

	if sub.ExperienceID.IsZero() {
		return "experienceId is required"
	}
	if sub.Quantity < 1 {
		return "quantity must be at least 1"
	}
	if _, err := time.Parse(models.DateLayout, sub.BookingDate); err != nil {
		return "invalid bookingDate; expected YYYY-MM-DD"
	}
	return ""
}
