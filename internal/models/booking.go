package models

import (
	"errors"
	"strings"
)

// ErrNegativePrice marks an experience whose unit price violates price >= 0.
var ErrNegativePrice = errors.New("experience price is negative")

// Experience is a bookable tour or activity as served by the catalog backend.
type Experience struct {
	ID              ID      `json:"id" yaml:"id"`
	Name            string  `json:"name,omitempty" yaml:"name"`
	Title           string  `json:"title,omitempty" yaml:"title"`
	Location        string  `json:"location,omitempty" yaml:"location"`
	Category        string  `json:"category,omitempty" yaml:"category"`
	Description     string  `json:"description,omitempty" yaml:"description"`
	LongDescription string  `json:"longDescription,omitempty" yaml:"long_description"`
	Image           string  `json:"image,omitempty" yaml:"image"`
	Price           int64   `json:"price" yaml:"price"`
	Duration        string  `json:"duration,omitempty" yaml:"duration"`
	GroupSize       string  `json:"groupSize,omitempty" yaml:"group_size"`
	Rating          float64 `json:"rating,omitempty" yaml:"rating"`
	Reviews         int     `json:"reviews,omitempty" yaml:"reviews"`
}

// DisplayName prefers name and falls back to title.
func (e Experience) DisplayName() string {
	if name := strings.TrimSpace(e.Name); name != "" {
		return name
	}
	return strings.TrimSpace(e.Title)
}

func (e Experience) Validate() error {
	if e.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// BookingSubmission is the payload posted to create a booking. Payment fields are
// passed through untouched.
type BookingSubmission struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"specialRequests"`
	ExperienceID    ID     `json:"experienceId"`
	Quantity        int    `json:"quantity"`
	BookingDate     string `json:"bookingDate"`
	PromoCode       string `json:"promo"`
	CardNumber      string `json:"cardNumber"`
	ExpiryDate      string `json:"expiryDate"`
	CVV             string `json:"cvv"`
}

// ExperienceSummary is the experience snapshot embedded in a booking record.
type ExperienceSummary struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Price    *int64 `json:"price,omitempty"`
}

// BookingRecord is the backend's authoritative booking. Total is displayed as
// returned and never recomputed.
type BookingRecord struct {
	ID              ID                 `json:"id"`
	RefID           string             `json:"refId"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	SpecialRequests string             `json:"specialRequests"`
	BookingDate     string             `json:"bookingDate"`
	Quantity        int                `json:"quantity"`
	Total           int64              `json:"total"`
	Status          string             `json:"status"`
	Experience      *ExperienceSummary `json:"Experience,omitempty"`
}

// Reference returns the human-facing booking reference, falling back to the id.
func (b BookingRecord) Reference() string {
	if ref := strings.TrimSpace(b.RefID); ref != "" {
		return ref
	}
	return b.ID.String()
}
