// Package memory provides in-memory persistence implementations used in
// tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
)

type stateEntry struct {
	state     *models.OperationState
	expiresAt time.Time
}

// OperationStateRepository keeps operation state in a map with lazy TTL
// expiry, mirroring the semantics of the Redis-backed implementation.
type OperationStateRepository struct {
	mu     sync.RWMutex
	states map[string]stateEntry
	now    func() time.Time
}

func NewOperationStateRepository() *OperationStateRepository {
	return &OperationStateRepository{
		states: make(map[string]stateEntry),
		now:    time.Now,
	}
}

func (r *OperationStateRepository) Save(_ context.Context, userID string, state *models.OperationState, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = models.DefaultStateTTL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[userID] = stateEntry{state: state, expiresAt: r.now().Add(ttl)}

	return nil
}

func (r *OperationStateRepository) Get(_ context.Context, userID string) (*models.OperationState, error) {
	r.mu.RLock()
	entry, ok := r.states[userID]
	r.mu.RUnlock()

	if !ok {
		return nil, persistence.ErrStateNotFound
	}

	if r.now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.states, userID)
		r.mu.Unlock()

		return nil, persistence.ErrStateNotFound
	}

	return entry.state, nil
}

func (r *OperationStateRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, userID)

	return nil
}

func (r *OperationStateRepository) HealthCheck(_ context.Context) error {
	return nil
}

func (r *OperationStateRepository) Close(_ context.Context) error {
	return nil
}
