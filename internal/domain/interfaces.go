package domain

import (
	"context"
	"time"

	"tourbook/internal/models"
)

// Backend is the remote booking API the storefront talks to.
type Backend interface {
	ListExperiences(ctx context.Context) ([]models.Experience, error)
	GetExperience(ctx context.Context, id models.ID) (*models.Experience, error)
	CreateBooking(ctx context.Context, sub *models.BookingSubmission) (models.ID, error)
	GetBooking(ctx context.Context, id models.ID) (*models.BookingRecord, error)
}

type FlowStateRepository interface {
	GetState(ctx context.Context, flowID string) (*models.FlowState, error)
	SetState(ctx context.Context, state *models.FlowState, ttl time.Duration) error
	// AcquireState stores state only when no state exists for its flow id.
	AcquireState(ctx context.Context, state *models.FlowState, ttl time.Duration) (bool, error)
	ClearState(ctx context.Context, flowID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingStore is the persistence behind the development backend.
type BookingStore interface {
	ListExperiences(ctx context.Context) ([]models.Experience, error)
	GetExperience(ctx context.Context, id models.ID) (*models.Experience, error)
	UpsertExperience(ctx context.Context, exp *models.Experience) error
	CreateBooking(ctx context.Context, sub *models.BookingSubmission) (*models.BookingRecord, error)
	GetBooking(ctx context.Context, id models.ID) (*models.BookingRecord, error)
}
