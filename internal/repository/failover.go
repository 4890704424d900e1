package repository

import (
	"context"
	"sync/atomic"
	"time"

	"tourbook/internal/domain"
	"tourbook/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStateRepository serves from primary (redis) and switches to fallback
// (memory) on the first primary error, retrying primary once per recoveryInterval.
type FailoverStateRepository struct {
	primary   domain.FlowStateRepository
	fallback  domain.FlowStateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverStateRepository(primary, fallback domain.FlowStateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

// usePrimary reports whether the next call should go to primary.
func (r *FailoverStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverStateRepository) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary state repository recovered")
	}
}

func (r *FailoverStateRepository) GetState(ctx context.Context, flowID string) (*models.FlowState, error) {
	if r.usePrimary() {
		state, err := r.primary.GetState(ctx, flowID)
		if err == nil {
			r.recovered()
			return state, nil
		}
		r.markDown(err)
	}

	return r.fallback.GetState(ctx, flowID)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.FlowState, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SetState(ctx, state, ttl)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetState(ctx, state, ttl)
}

func (r *FailoverStateRepository) AcquireState(ctx context.Context, state *models.FlowState, ttl time.Duration) (bool, error) {
	if r.usePrimary() {
		ok, err := r.primary.AcquireState(ctx, state, ttl)
		if err == nil {
			r.recovered()
			return ok, nil
		}
		r.markDown(err)
	}

	return r.fallback.AcquireState(ctx, state, ttl)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, flowID string) error {
	if r.usePrimary() {
		err := r.primary.ClearState(ctx, flowID)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearState(ctx, flowID)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.recovered()
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
