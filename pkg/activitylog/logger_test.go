package activitylog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/contentools/reaper/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingLogRepository always rejects writes, to exercise the fallback.
type failingLogRepository struct{}

func (r *failingLogRepository) Append(context.Context, *models.LogEntry) error {
	return errors.New("store unavailable")
}

func (r *failingLogRepository) List(context.Context, persistence.LogFilter) ([]*models.LogEntry, error) {
	return nil, errors.New("store unavailable")
}

func (r *failingLogRepository) PurgeOlderThan(context.Context, int) (int64, error) {
	return 0, errors.New("store unavailable")
}

func (r *failingLogRepository) HealthCheck(context.Context) error {
	return errors.New("store unavailable")
}

func (r *failingLogRepository) Close(context.Context) error {
	return nil
}

func TestLogFillsIDAndTimestamp(t *testing.T) {
	repo := memory.NewActivityLogRepository()
	logger := New(repo, slog.New(slog.DiscardHandler))

	entry := &models.LogEntry{
		Action:  models.LogActionFind,
		Status:  models.LogStatusInfo,
		Summary: "something happened",
	}

	logger.Log(t.Context(), entry)

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	entries, err := repo.List(t.Context(), persistence.LogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLogNeverFailsTheCallerOnStoreErrors(t *testing.T) {
	logger := New(&failingLogRepository{}, slog.New(slog.DiscardHandler))

	// Must not panic or propagate the store failure.
	logger.Log(t.Context(), &models.LogEntry{
		Action:  models.LogActionDeleteBatch,
		Status:  models.LogStatusSuccess,
		Summary: "deleted things",
	})
}

func TestListAppliesFilters(t *testing.T) {
	repo := memory.NewActivityLogRepository()
	logger := New(repo, slog.New(slog.DiscardHandler))

	logger.Log(t.Context(), &models.LogEntry{Action: models.LogActionFind, Status: models.LogStatusInfo})
	logger.Log(t.Context(), &models.LogEntry{Action: models.LogActionDeleteBatch, Status: models.LogStatusError})
	logger.Log(t.Context(), &models.LogEntry{Action: models.LogActionDeleteBatch, Status: models.LogStatusSuccess})

	entries, err := logger.List(t.Context(), persistence.LogFilter{Action: models.LogActionDeleteBatch})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = logger.List(t.Context(), persistence.LogFilter{
		Action: models.LogActionDeleteBatch,
		Status: models.LogStatusError,
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
