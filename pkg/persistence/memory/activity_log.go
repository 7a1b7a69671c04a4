package memory

import (
	"context"
	"sync"
	"time"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/google/uuid"
)

// ActivityLogRepository keeps log entries in memory, newest first.
type ActivityLogRepository struct {
	mu      sync.RWMutex
	entries []*models.LogEntry
	now     func() time.Time
}

func NewActivityLogRepository() *ActivityLogRepository {
	return &ActivityLogRepository{now: time.Now}
}

func (r *ActivityLogRepository) Append(_ context.Context, entry *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}

	r.entries = append(r.entries, entry)

	return nil
}

func (r *ActivityLogRepository) List(_ context.Context, filter persistence.LogFilter) ([]*models.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.LogEntry, 0, len(r.entries))

	// Newest first.
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]

		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}

		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}

		matched = append(matched, entry)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*models.LogEntry{}, nil
		}

		matched = matched[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

func (r *ActivityLogRepository) PurgeOlderThan(_ context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}

	cutoff := r.now().UTC().AddDate(0, 0, -days)

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]

	var removed int64

	for _, entry := range r.entries {
		if entry.CreatedAt.After(cutoff) {
			kept = append(kept, entry)
		} else {
			removed++
		}
	}

	r.entries = kept

	return removed, nil
}

func (r *ActivityLogRepository) HealthCheck(_ context.Context) error {
	return nil
}

func (r *ActivityLogRepository) Close(_ context.Context) error {
	return nil
}
