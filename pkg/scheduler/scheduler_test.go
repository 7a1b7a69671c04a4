package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedBatch struct {
	ids    []int64
	isLast bool
}

// fakeDispatcher records every dispatch and can fail specific batches at
// the transport level.
type fakeDispatcher struct {
	batches     []recordedBatch
	failBatches map[int]bool
	outcome     func(ids []int64, isLast bool) *BatchOutcome
}

func (d *fakeDispatcher) Dispatch(_ context.Context, ids []int64, isLast bool) (*BatchOutcome, error) {
	index := len(d.batches)
	d.batches = append(d.batches, recordedBatch{ids: ids, isLast: isLast})

	if d.failBatches[index] {
		return nil, errors.New("connection refused")
	}

	if d.outcome != nil {
		return d.outcome(ids, isLast), nil
	}

	return &BatchOutcome{Deleted: len(ids)}, nil
}

func testIDs(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	return ids
}

func newTestScheduler(dispatcher Dispatcher) *Scheduler {
	return NewScheduler(dispatcher, slog.New(slog.DiscardHandler))
}

func TestRunPartitionsWithoutLossOrDuplication(t *testing.T) {
	cases := []struct {
		name      string
		total     int
		batchSize int
		batches   int
	}{
		{"even split", 100, 50, 2},
		{"uneven final batch", 103, 50, 3},
		{"single batch", 7, 50, 1},
		{"batch size one", 3, 1, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			sched := newTestScheduler(dispatcher)

			totals, err := sched.Run(t.Context(), testIDs(tc.total), Options{BatchSize: tc.batchSize})
			require.NoError(t, err)

			assert.Equal(t, tc.batches, totals.Batches)
			assert.Equal(t, tc.total, totals.Attempted)
			assert.Equal(t, tc.total, totals.Deleted)
			assert.Equal(t, 0, totals.Errors)

			seen := make(map[int64]int)

			for _, batch := range dispatcher.batches {
				for _, id := range batch.ids {
					seen[id]++
				}
			}

			require.Len(t, seen, tc.total)

			for id, count := range seen {
				assert.Equalf(t, 1, count, "id %d dispatched %d times", id, count)
			}
		})
	}
}

func TestRunMarksExactlyOneLastBatch(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sched := newTestScheduler(dispatcher)

	_, err := sched.Run(t.Context(), testIDs(103), Options{BatchSize: 25})
	require.NoError(t, err)

	lastCount := 0

	for i, batch := range dispatcher.batches {
		if batch.isLast {
			lastCount++

			assert.Equal(t, len(dispatcher.batches)-1, i, "last-batch flag must be on the final dispatch")
		}
	}

	assert.Equal(t, 1, lastCount)
}

func TestRunProgressIsMonotonicAndEndsAtHundred(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sched := newTestScheduler(dispatcher)

	var reports []Progress

	_, err := sched.Run(t.Context(), testIDs(103), Options{
		BatchSize: 50,
		Progress: func(p Progress) {
			reports = append(reports, p)
		},
	})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	previous := 0.0

	for i, report := range reports {
		assert.GreaterOrEqual(t, report.Percent, previous)

		if i < len(reports)-1 {
			assert.Less(t, report.Percent, 100.0)
		}

		previous = report.Percent
	}

	assert.InDelta(t, 100.0, reports[len(reports)-1].Percent, 0.0001)
	assert.Equal(t, 103, reports[len(reports)-1].Processed)
}

func TestRunCountsTransportFailureAsBatchErrorsAndContinues(t *testing.T) {
	dispatcher := &fakeDispatcher{failBatches: map[int]bool{1: true}}
	sched := newTestScheduler(dispatcher)

	totals, err := sched.Run(t.Context(), testIDs(120), Options{BatchSize: 50})
	require.NoError(t, err)

	// Batches of 50, 50 (failed), 20.
	assert.Equal(t, 3, totals.Batches)
	assert.Equal(t, 120, totals.Attempted)
	assert.Equal(t, 70, totals.Deleted)
	assert.Equal(t, 50, totals.Errors)
	assert.Len(t, dispatcher.batches, 3)
}

func TestRunAccumulatesPerItemErrors(t *testing.T) {
	dispatcher := &fakeDispatcher{
		outcome: func(ids []int64, _ bool) *BatchOutcome {
			return &BatchOutcome{Deleted: len(ids) - 1, Errors: 1}
		},
	}
	sched := newTestScheduler(dispatcher)

	totals, err := sched.Run(t.Context(), testIDs(100), Options{BatchSize: 25})
	require.NoError(t, err)

	assert.Equal(t, 96, totals.Deleted)
	assert.Equal(t, 4, totals.Errors)
}

func TestRunRefusesEmptyList(t *testing.T) {
	sched := newTestScheduler(&fakeDispatcher{})

	_, err := sched.Run(t.Context(), nil, Options{})
	assert.ErrorIs(t, err, ErrNothingToProcess)
}

func TestRunRefusesDryRun(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sched := newTestScheduler(dispatcher)

	_, err := sched.Run(t.Context(), testIDs(10), Options{DryRun: true})
	assert.ErrorIs(t, err, ErrDryRun)
	assert.Empty(t, dispatcher.batches, "dry run must not dispatch anything")
}

func TestRunHonorsConfirmationGate(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sched := newTestScheduler(dispatcher)

	_, err := sched.Run(t.Context(), testIDs(10), Options{
		Confirm: func(int) bool { return false },
	})
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, dispatcher.batches)

	confirmedWith := 0

	totals, err := sched.Run(t.Context(), testIDs(10), Options{
		Confirm: func(total int) bool {
			confirmedWith = total

			return true
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, confirmedWith)
	assert.Equal(t, 10, totals.Deleted)
}

func TestRunClampsBatchSize(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sched := newTestScheduler(dispatcher)

	// A batch size above the maximum is clamped to 1000.
	totals, err := sched.Run(t.Context(), testIDs(1500), Options{BatchSize: 9999})
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Batches)
	assert.Len(t, dispatcher.batches[0].ids, 1000)
}

func TestRunInvokesHooksAroundEachBatch(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sched := newTestScheduler(dispatcher)

	pre, post := 0, 0

	_, err := sched.Run(t.Context(), testIDs(30), Options{
		BatchSize: 10,
		PreBatch:  []Hook{func(context.Context, []int64) { pre++ }},
		PostBatch: []Hook{func(context.Context, []int64) { post++ }},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, pre)
	assert.Equal(t, 3, post)
}

func TestRunStopsWaitingWhenContextCancelled(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sched := newTestScheduler(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	totals, err := sched.Run(ctx, testIDs(20), Options{BatchSize: 10, Pause: time.Minute})
	require.Error(t, err)
	assert.Equal(t, 1, totals.Batches, "cancellation takes effect at the pause between batches")
}
