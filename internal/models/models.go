package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is an opaque identifier issued by the booking backend. Backends disagree on
// whether identifiers are JSON strings or numbers, so both decode into the same value.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is blank.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// FlowState is what the submission guard remembers about one booking form instance.
type FlowState struct {
	FlowID       string    `json:"flow_id"`
	Phase        string    `json:"phase"`
	ExperienceID ID        `json:"experience_id,omitempty"`
	BookingID    ID        `json:"booking_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Submitted reports whether the flow already produced a booking.
func (s *FlowState) Submitted() bool {
	return s != nil && s.Phase == PhaseSucceeded && !s.BookingID.IsZero()
}
