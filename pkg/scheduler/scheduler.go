// Package scheduler drives a previously found target list through
// sequential, paced batch dispatches until the queue is empty.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contentools/reaper/pkg/models"
)

var (
	// ErrNothingToProcess indicates an empty target list.
	ErrNothingToProcess = errors.New("nothing to process")

	// ErrDryRun indicates dry-run mode: the run is refused before any
	// dispatch happens.
	ErrDryRun = errors.New("dry run, no batches dispatched")

	// ErrNotConfirmed indicates the operator declined the confirmation
	// gate before the first batch.
	ErrNotConfirmed = errors.New("operation not confirmed")
)

// BatchOutcome is what a dispatcher reports back for one batch. A
// dispatch that fails at the transport level returns an error instead,
// and the scheduler counts the whole slice as errored.
type BatchOutcome struct {
	Deleted      int
	Errors       int
	Details      []string
	FinalMessage string
}

// Dispatcher sends one batch for execution and waits for its outcome.
// Each dispatch is a single bounded exchange, no internal retries.
type Dispatcher interface {
	Dispatch(ctx context.Context, ids []int64, isLastBatch bool) (*BatchOutcome, error)
}

// Hook runs synchronously around each dispatch.
type Hook func(ctx context.Context, ids []int64)

// Progress is reported after every batch outcome. Percent is cumulative
// over items, not batches, so an uneven final batch still renders a
// monotonically increasing sequence ending at exactly 100.
type Progress struct {
	Batch        int
	TotalBatches int
	Processed    int
	Total        int
	Percent      float64
}

// Totals aggregates a finished run.
type Totals struct {
	Attempted int
	Deleted   int
	Errors    int
	Batches   int
}

// Options configures one run. Zero values fall back to the defaults:
// batch size 50, no pause, no confirmation gate.
type Options struct {
	BatchSize int
	Pause     time.Duration
	DryRun    bool

	// Confirm gates the irreversible first dispatch. Returning false
	// aborts the run before anything is deleted.
	Confirm func(total int) bool

	Progress  func(p Progress)
	PreBatch  []Hook
	PostBatch []Hook
}

// Scheduler is the client-side controller of one bulk deletion. It is a
// single sequential loop: batches are never dispatched concurrently, and
// once the first batch goes out the run continues to completion
// regardless of individual batch outcomes.
type Scheduler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewScheduler(dispatcher Dispatcher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: dispatcher,
		logger:     logger.With("module", "scheduler"),
	}
}

// Run processes ids front to back in batches. It refuses to start on an
// empty list, in dry-run mode, or when the confirmation gate declines.
// A transport failure counts the whole batch as errors and the loop
// continues with the next slice after the configured pause.
func (s *Scheduler) Run(ctx context.Context, ids []int64, opts Options) (*Totals, error) {
	if len(ids) == 0 {
		return nil, ErrNothingToProcess
	}

	if opts.DryRun {
		return nil, ErrDryRun
	}

	if opts.Confirm != nil && !opts.Confirm(len(ids)) {
		return nil, ErrNotConfirmed
	}

	batchSize := models.ClampBatchSize(opts.BatchSize)
	pause := models.ClampBatchPause(opts.Pause)

	total := len(ids)
	totalBatches := (total + batchSize - 1) / batchSize
	totals := &Totals{}

	queue := make([]int64, len(ids))
	copy(queue, ids)

	s.logger.InfoContext(ctx, "Starting bulk deletion",
		"total", total, "batch_size", batchSize, "batches", totalBatches, "pause", pause)

	for len(queue) > 0 {
		batch := queue
		if len(batch) > batchSize {
			batch = batch[:batchSize]
		}

		queue = queue[len(batch):]
		isLastBatch := len(queue) == 0

		for _, hook := range opts.PreBatch {
			hook(ctx, batch)
		}

		s.dispatch(ctx, batch, isLastBatch, totals)

		for _, hook := range opts.PostBatch {
			hook(ctx, batch)
		}

		totals.Attempted += len(batch)
		totals.Batches++

		if opts.Progress != nil {
			opts.Progress(Progress{
				Batch:        totals.Batches,
				TotalBatches: totalBatches,
				Processed:    totals.Attempted,
				Total:        total,
				Percent:      float64(totals.Attempted) / float64(total) * 100,
			})
		}

		if !isLastBatch && pause > 0 {
			err := s.wait(ctx, pause)
			if err != nil {
				return totals, err
			}
		}
	}

	s.logger.InfoContext(ctx, "Bulk deletion complete",
		"attempted", totals.Attempted, "deleted", totals.Deleted, "errors", totals.Errors, "batches", totals.Batches)

	return totals, nil
}

// dispatch sends one batch and folds its outcome into the totals. A
// transport-level failure marks every ID of the slice as errored and the
// run continues.
func (s *Scheduler) dispatch(ctx context.Context, batch []int64, isLastBatch bool, totals *Totals) {
	outcome, err := s.dispatcher.Dispatch(ctx, batch, isLastBatch)
	if err != nil {
		totals.Errors += len(batch)

		s.logger.WarnContext(ctx, "Batch dispatch failed, counting batch as errored",
			"batch_size", len(batch), "error", err)

		return
	}

	totals.Deleted += outcome.Deleted
	totals.Errors += outcome.Errors

	if outcome.FinalMessage != "" {
		s.logger.InfoContext(ctx, outcome.FinalMessage)
	}
}

func (s *Scheduler) wait(ctx context.Context, pause time.Duration) error {
	timer := time.NewTimer(pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("bulk deletion interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
