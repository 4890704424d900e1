package repository

import (
	"context"
	"sync"
	"time"

	"tourbook/internal/models"
)

type MemoryStateRepository struct {
	mu         sync.Mutex
	states     map[string]memoryEntry
	rateLimits map[string]*rateLimitEntry
	ttl        time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	state     models.FlowState
	expiresAt time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		states:     make(map[string]memoryEntry),
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (r *MemoryStateRepository) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = r.ttl
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return r.now().Add(ttl)
}

// lookup must be called with r.mu held.
func (r *MemoryStateRepository) lookup(flowID string) (memoryEntry, bool) {
	entry, ok := r.states[flowID]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		delete(r.states, flowID)
		return memoryEntry{}, false
	}
	return entry, true
}

func (r *MemoryStateRepository) GetState(ctx context.Context, flowID string) (*models.FlowState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookup(flowID)
	if !ok {
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.FlowState, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.FlowID] = memoryEntry{state: *state, expiresAt: r.expiry(ttl)}
	return nil
}

func (r *MemoryStateRepository) AcquireState(ctx context.Context, state *models.FlowState, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(state.FlowID); ok {
		return false, nil
	}
	r.states[state.FlowID] = memoryEntry{state: *state, expiresAt: r.expiry(ttl)}
	return true, nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, flowID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, flowID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}
