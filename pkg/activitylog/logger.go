// Package activitylog provides the structured activity log written by
// every step of a deletion operation, plus its retention sweep.
package activitylog

import (
	"context"
	"log/slog"
	"time"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/google/uuid"
)

// Logger appends entries to the activity log. A write failure never
// propagates to the calling workflow: the entry falls back to the
// process logger and the operation continues.
type Logger struct {
	repo     persistence.ActivityLogRepository
	fallback *slog.Logger
}

// New creates an activity logger over the given repository.
func New(repo persistence.ActivityLogRepository, fallback *slog.Logger) *Logger {
	return &Logger{
		repo:     repo,
		fallback: fallback.With("module", "activity_log"),
	}
}

// Log appends one entry, filling in ID and timestamp when missing.
func (l *Logger) Log(ctx context.Context, entry *models.LogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	err := l.repo.Append(ctx, entry)
	if err != nil {
		l.fallback.ErrorContext(ctx, "Failed to persist log entry, falling back",
			"error", err,
			"action", entry.Action,
			"status", entry.Status,
			"summary", entry.Summary,
		)
	}
}

// List returns entries matching the filter, newest first.
func (l *Logger) List(ctx context.Context, filter persistence.LogFilter) ([]*models.LogEntry, error) {
	return l.repo.List(ctx, filter)
}

// HealthCheck reports whether the underlying log store is reachable.
func (l *Logger) HealthCheck(ctx context.Context) error {
	return l.repo.HealthCheck(ctx)
}
