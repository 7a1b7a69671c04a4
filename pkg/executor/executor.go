// Package executor processes one batch of a bulk deletion on the server
// side: per-item deletion, logging, and the last-batch completion path.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contentools/reaper/pkg/activitylog"
	"github.com/contentools/reaper/pkg/cleanup"
	"github.com/contentools/reaper/pkg/eventbus"
	"github.com/contentools/reaper/pkg/events"
	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/otelhelper"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// sampledIDs bounds how many batch IDs make it into the log summary.
const sampledIDs = 5

// ErrEmptyBatch indicates a batch call without any IDs. This is a caller
// error, not a partial-failure outcome.
var ErrEmptyBatch = errors.New("batch contains no item IDs")

// IsEmptyBatch reports whether err is an empty-batch error.
func IsEmptyBatch(err error) bool {
	return errors.Is(err, ErrEmptyBatch)
}

// Hook runs synchronously around each batch.
type Hook func(ctx context.Context, ids []int64)

// BatchResult is the structured outcome of one batch. Per-item failures
// are counted here, never returned as an error.
type BatchResult struct {
	Attempted    int
	Deleted      int
	Errors       int
	Details      []string
	FinalMessage string
}

// Executor deletes the items of one batch and, on the last batch,
// triggers term cleanup and clears the persisted operation state.
type Executor struct {
	content   persistence.ContentRepository
	states    persistence.OperationStateRepository
	cleaner   *cleanup.Cleaner
	log       *activitylog.Logger
	bus       eventbus.EventPublisher
	logger    *slog.Logger
	tracer    trace.Tracer
	preBatch  []Hook
	postBatch []Hook
}

func NewExecutor(
	content persistence.ContentRepository,
	states persistence.OperationStateRepository,
	cleaner *cleanup.Cleaner,
	log *activitylog.Logger,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Executor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("executor")
	}

	return &Executor{
		content: content,
		states:  states,
		cleaner: cleaner,
		log:     log,
		bus:     bus,
		logger:  logger.With("module", "executor"),
		tracer:  tracer,
	}
}

// AddPreBatchHook registers a callback invoked before each batch.
func (e *Executor) AddPreBatchHook(hook Hook) {
	e.preBatch = append(e.preBatch, hook)
}

// AddPostBatchHook registers a callback invoked after each batch.
func (e *Executor) AddPostBatchHook(hook Hook) {
	e.postBatch = append(e.postBatch, hook)
}

// ProcessBatch deletes each item of the batch independently. One item
// failing does not stop the rest. When isLastBatch is set the operation
// completes: term cleanup runs with the original full target set from the
// persisted state, and the state is deleted regardless of the cleanup
// outcome.
func (e *Executor) ProcessBatch(ctx context.Context, userID string, ids []int64, isLastBatch bool) (*BatchResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor.process_batch",
		attribute.String(otelhelper.ActingUserKey, userID),
		attribute.Int(otelhelper.BatchSizeKey, len(ids)),
		attribute.Bool(otelhelper.LastBatchKey, isLastBatch),
	)
	defer span.End()

	if len(ids) == 0 {
		otelhelper.SetError(span, ErrEmptyBatch)

		return nil, ErrEmptyBatch
	}

	state := e.loadState(ctx, userID)

	for _, hook := range e.preBatch {
		hook(ctx, ids)
	}

	result := &BatchResult{
		Attempted: len(ids),
		Details:   make([]string, 0, len(ids)),
	}

	for _, id := range ids {
		e.deleteItem(ctx, id, result)
	}

	for _, hook := range e.postBatch {
		hook(ctx, ids)
	}

	e.logBatch(ctx, userID, ids, state, result)
	e.publishBatch(ctx, userID, result, isLastBatch)

	if isLastBatch {
		e.complete(ctx, userID, state, result)
	}

	return result, nil
}

// loadState fetches the operation state for the acting user. Missing or
// expired state degrades gracefully: the batch still runs, cleanup
// becomes a no-op.
func (e *Executor) loadState(ctx context.Context, userID string) *models.OperationState {
	state, err := e.states.Get(ctx, userID)
	if err != nil {
		if !persistence.IsStateNotFound(err) {
			e.logger.WarnContext(ctx, "Failed to load operation state, proceeding without it",
				"user", userID, "error", err)
		}

		return nil
	}

	return state
}

func (e *Executor) deleteItem(ctx context.Context, id int64, result *BatchResult) {
	title, err := e.content.ItemTitle(ctx, id)
	if err != nil {
		title = fmt.Sprintf("item %d", id)
	}

	err = e.content.DeleteItem(ctx, id)
	if err != nil {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("Failed to delete %q (ID %d): %v", title, id, err))

		return
	}

	result.Deleted++
	result.Details = append(result.Details, fmt.Sprintf("Deleted %q (ID %d)", title, id))
}

// complete runs the once-per-operation finish path. The persisted state
// is cleared whether or not cleanup succeeded, so a failed cleanup can
// never be retriggered against an already-deleted target set.
func (e *Executor) complete(ctx context.Context, userID string, state *models.OperationState, result *BatchResult) {
	var settings *models.OperationSettings

	targetCount := 0

	if state != nil {
		settings = &state.Settings
		targetCount = len(state.TargetIDs)
	}

	cleaned, err := e.cleaner.Run(ctx, userID, settings)
	if err != nil {
		e.logger.ErrorContext(ctx, "Term cleanup failed", "user", userID, "error", err)

		cleaned = &cleanup.Result{}
	}

	err = e.states.Delete(ctx, userID)
	if err != nil && !persistence.IsStateNotFound(err) {
		e.logger.WarnContext(ctx, "Failed to clear operation state", "user", userID, "error", err)
	}

	switch {
	case cleaned.Skipped:
		result.FinalMessage = "Bulk deletion finished"
	default:
		result.FinalMessage = fmt.Sprintf("Bulk deletion finished, removed %d empty terms (%d errors)",
			cleaned.Deleted, cleaned.Errors)
	}

	e.publishCompleted(ctx, userID, settings, targetCount, cleaned)
}

func (e *Executor) logBatch(ctx context.Context, userID string, ids []int64, state *models.OperationState, result *BatchResult) {
	sample := ids
	if len(sample) > sampledIDs {
		sample = sample[:sampledIDs]
	}

	status := models.LogStatusSuccess
	if result.Errors > 0 {
		status = models.LogStatusError
	}

	var criteria *models.OperationSettings
	if state != nil {
		criteria = &state.Settings
	}

	e.log.Log(ctx, &models.LogEntry{
		Action:     models.LogActionDeleteBatch,
		Status:     status,
		Summary:    fmt.Sprintf("Batch deleted %d of %d items, %d errors (IDs %v)", result.Deleted, result.Attempted, result.Errors, sample),
		Criteria:   criteria,
		Attempted:  result.Attempted,
		Deleted:    result.Deleted,
		Errors:     result.Errors,
		Details:    result.Details,
		ActingUser: userID,
	})
}

func (e *Executor) publishBatch(ctx context.Context, userID string, result *BatchResult, isLastBatch bool) {
	event := events.BatchProcessed{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.BatchProcessedEvent,
			Timestamp:  time.Now().UTC(),
			ActingUser: userID,
		},
		Attempted:   result.Attempted,
		Deleted:     result.Deleted,
		Errors:      result.Errors,
		IsLastBatch: isLastBatch,
	}

	err := e.bus.Publish(ctx, userID, event)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to publish batch.processed event", "error", err)
	}
}

func (e *Executor) publishCompleted(ctx context.Context, userID string, settings *models.OperationSettings, targetCount int, cleaned *cleanup.Result) {
	event := events.OperationCompleted{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.OperationCompletedEvent,
			Timestamp:  time.Now().UTC(),
			ActingUser: userID,
		},
		TargetCount:  targetCount,
		TermsDeleted: cleaned.Deleted,
		TermErrors:   cleaned.Errors,
	}

	if settings != nil {
		event.Criteria = *settings
	}

	err := e.bus.Publish(ctx, userID, event)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to publish operation.completed event", "error", err)
	}
}
