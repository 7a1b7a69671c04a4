// Package persistence provides the storage abstraction layer for
// operation state, the activity log, and the content store.
package persistence

import (
	"context"
	"time"

	"github.com/contentools/reaper/pkg/models"
)

// OperationStateRepository stores the short-lived state of one bulk
// deletion operation, keyed by the acting user. Entries expire after the
// given TTL so abandoned operations clean themselves up.
type OperationStateRepository interface {
	Save(ctx context.Context, userID string, state *models.OperationState, ttl time.Duration) error
	Get(ctx context.Context, userID string) (*models.OperationState, error)
	Delete(ctx context.Context, userID string) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// LogFilter narrows an activity-log listing.
type LogFilter struct {
	Action models.LogAction
	Status models.LogStatus
	Limit  int
	Offset int
}

// ActivityLogRepository is the append-only log store with its retention
// primitives. Entries are never updated in place.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *models.LogEntry) error
	List(ctx context.Context, filter LogFilter) ([]*models.LogEntry, error)

	// PurgeOlderThan permanently removes entries dated at or before
	// now - days. A zero days value keeps everything and removes nothing.
	PurgeOlderThan(ctx context.Context, days int) (int64, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ItemQuery is the resolved, validated query descriptor the Item Finder
// hands to the content store. An empty TermIDs slice means no term
// restriction within the taxonomy.
type ItemQuery struct {
	ContentType string
	Taxonomy    string
	TermIDs     []int64
}

// ContentRepository is the boundary to the content store holding items
// and taxonomy terms. Implementations must return item IDs in a stable,
// deterministic order (ascending by ID).
type ContentRepository interface {
	FindItemIDs(ctx context.Context, query ItemQuery) ([]int64, error)
	ItemTitle(ctx context.Context, id int64) (string, error)

	// DeleteItem permanently deletes an item. There is no trash step.
	DeleteItem(ctx context.Context, id int64) error

	ListTerms(ctx context.Context, taxonomy string) ([]*models.Term, error)
	GetTerm(ctx context.Context, id int64, taxonomy string) (*models.Term, error)

	// RefreshTermCounts recomputes the attached-item count of the given
	// terms. Deletions may not propagate counts synchronously, so callers
	// that are about to trust counts must refresh first.
	RefreshTermCounts(ctx context.Context, ids []int64, taxonomy string) error
	DeleteTerm(ctx context.Context, id int64, taxonomy string) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
