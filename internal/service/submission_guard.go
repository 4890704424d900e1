package service

import (
	"context"
	"time"

	"tourbook/internal/domain"
	"tourbook/internal/flow"
	"tourbook/internal/models"
	"tourbook/internal/nav"

	"github.com/rs/zerolog"
)

// SubmissionGuard keeps one booking form instance from creating two bookings across
// requests. It is best-effort: repository errors are logged and the submission goes ahead.
type SubmissionGuard struct {
	stateRepo  domain.FlowStateRepository
	logger     *zerolog.Logger
	ttl        time.Duration
	rateLimit  int
	rateWindow time.Duration
	now        func() time.Time
}

func NewSubmissionGuard(stateRepo domain.FlowStateRepository, ttl time.Duration, rateLimit int, rateWindow time.Duration, logger *zerolog.Logger) *SubmissionGuard {
	return &SubmissionGuard{
		stateRepo:  stateRepo,
		logger:     logger,
		ttl:        ttl,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
		now:        time.Now,
	}
}

func (g *SubmissionGuard) Begin(ctx context.Context, flowID string, experienceID models.ID) error {
	if flowID == "" {
		return nil
	}

	state := &models.FlowState{
		FlowID:       flowID,
		Phase:        models.PhaseSubmitting,
		ExperienceID: experienceID,
		UpdatedAt:    g.now(),
	}
	ok, err := g.stateRepo.AcquireState(ctx, state, g.ttl)
	if err != nil {
		g.logger.Warn().Err(err).Str("flow_id", flowID).Msg("submission guard unavailable, proceeding")
		return nil
	}
	if ok {
		return nil
	}

	existing, err := g.stateRepo.GetState(ctx, flowID)
	if err != nil {
		g.logger.Warn().Err(err).Str("flow_id", flowID).Msg("submission guard unavailable, proceeding")
		return nil
	}
	if existing == nil {
		// expired between acquire and read
		return nil
	}
	if existing.Submitted() {
		return &flow.AlreadySubmittedError{Confirmation: nav.ConfirmationIntent{
			TourID:    existing.ExperienceID,
			BookingID: existing.BookingID,
		}}
	}
	return flow.ErrSubmitInProgress
}

func (g *SubmissionGuard) Finish(ctx context.Context, flowID string, c nav.ConfirmationIntent) {
	if flowID == "" {
		return
	}
	state := &models.FlowState{
		FlowID:       flowID,
		Phase:        models.PhaseSucceeded,
		ExperienceID: c.TourID,
		BookingID:    c.BookingID,
		UpdatedAt:    g.now(),
	}
	if err := g.stateRepo.SetState(ctx, state, g.ttl); err != nil {
		g.logger.Error().Err(err).Str("flow_id", flowID).Msg("failed to record submitted booking")
	}
}

func (g *SubmissionGuard) Release(ctx context.Context, flowID string) {
	if flowID == "" {
		return
	}
	if err := g.stateRepo.ClearState(ctx, flowID); err != nil {
		g.logger.Error().Err(err).Str("flow_id", flowID).Msg("failed to release submission guard")
	}
}

// Allow applies the per-client submission rate limit.
func (g *SubmissionGuard) Allow(ctx context.Context, clientKey string) bool {
	if g.rateLimit <= 0 {
		return true
	}
	allowed, err := g.stateRepo.CheckRateLimit(ctx, "submit:"+clientKey, g.rateLimit, g.rateWindow)
	if err != nil {
		g.logger.Warn().Err(err).Str("client", clientKey).Msg("rate limit check failed, allowing")
		return true
	}
	return allowed
}
