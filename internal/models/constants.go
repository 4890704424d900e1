package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Submission phases of a booking form instance.
const (
	PhaseIdle       = "idle"
	PhaseSubmitting = "submitting"
	PhaseSucceeded  = "succeeded"
)

const (
	// DefaultPromoCode replaces a promo field left blank by the guest.
	DefaultPromoCode = "HOLIDAY2025"

	// ServiceFee is a fixed policy amount added to every quote.
	ServiceFee int64 = 0

	// CurrencySymbol prefixes every displayed amount.
	CurrencySymbol = "₹"

	// DateLayout is the ISO calendar date carried in URLs and payloads.
	DateLayout = "2006-01-02"

	// DefaultBackendURL is used when neither config nor environment name a backend.
	DefaultBackendURL = "http://localhost:5000"

	// DefaultGuardTTL bounds how long a flow instance stays locked, in seconds.
	DefaultGuardTTL = 15 * 60

	// DefaultSubmitRateLimit submissions per client within DefaultSubmitRateWindow seconds.
	DefaultSubmitRateLimit  = 10
	DefaultSubmitRateWindow = 60
)
