package activitylog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// sweepSchedule runs the retention sweep once a day.
const sweepSchedule = "@daily"

// Sweeper removes log entries older than the configured retention
// period, on a daily schedule and on demand.
type Sweeper struct {
	repo          persistence.ActivityLogRepository
	log           *Logger
	logger        *slog.Logger
	retentionDays int
	cron          *cron.Cron
}

// NewSweeper creates a sweeper with the given retention period in days.
// Invalid periods fall back to the default.
func NewSweeper(repo persistence.ActivityLogRepository, log *Logger, logger *slog.Logger, retentionDays int) *Sweeper {
	if !models.ValidRetentionDays(retentionDays) {
		logger.Warn("Invalid log retention period, using default",
			"requested", retentionDays,
			"default", models.DefaultRetentionDays,
		)

		retentionDays = models.DefaultRetentionDays
	}

	return &Sweeper{
		repo:          repo,
		log:           log,
		logger:        logger.With("module", "log_sweeper"),
		retentionDays: retentionDays,
	}
}

// RetentionDays returns the active retention period.
func (s *Sweeper) RetentionDays() int {
	return s.retentionDays
}

// Start schedules the daily sweep. With retention zero (keep forever)
// nothing is scheduled.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.retentionDays <= 0 {
		s.logger.InfoContext(ctx, "Log retention set to keep forever, sweep not scheduled")

		return nil
	}

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(sweepSchedule, func() {
		s.sweep(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule log sweep: %w", err)
	}

	s.cron.Start()

	s.log.Log(ctx, &models.LogEntry{
		Action:  models.LogActionCronSchedule,
		Status:  models.LogStatusInfo,
		Summary: fmt.Sprintf("Log cleanup scheduled daily, retention %d days", s.retentionDays),
	})

	return nil
}

// Stop halts the scheduled sweep.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// Reschedule applies a new retention period, stopping or restarting the
// scheduled sweep as needed.
func (s *Sweeper) Reschedule(ctx context.Context, retentionDays int) error {
	if !models.ValidRetentionDays(retentionDays) {
		return fmt.Errorf("invalid retention period: %d days", retentionDays)
	}

	if retentionDays == s.retentionDays {
		return nil
	}

	s.Stop()
	s.retentionDays = retentionDays

	if retentionDays <= 0 {
		s.log.Log(ctx, &models.LogEntry{
			Action:  models.LogActionCronUnschedule,
			Status:  models.LogStatusInfo,
			Summary: "Log cleanup unscheduled, retention set to keep forever",
		})

		return nil
	}

	return s.Start(ctx)
}

// RunOnce purges immediately using the active retention period, for the
// manual "clean up now" path. Returns the number of entries removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}

	removed, err := s.repo.PurgeOlderThan(ctx, s.retentionDays)
	if err != nil {
		s.log.Log(ctx, &models.LogEntry{
			Action:  models.LogActionLogPurge,
			Status:  models.LogStatusError,
			Summary: fmt.Sprintf("Manual log cleanup failed: %v", err),
		})

		return 0, fmt.Errorf("failed to purge old log entries: %w", err)
	}

	s.log.Log(ctx, &models.LogEntry{
		Action:  models.LogActionLogPurge,
		Status:  models.LogStatusSuccess,
		Summary: fmt.Sprintf("Manual log cleanup removed %d entries", removed),
		Deleted: int(removed),
	})

	return removed, nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.repo.PurgeOlderThan(ctx, s.retentionDays)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduled log cleanup failed", "error", err)
		s.log.Log(ctx, &models.LogEntry{
			Action:  models.LogActionCronCleanup,
			Status:  models.LogStatusError,
			Summary: fmt.Sprintf("Scheduled log cleanup failed: %v", err),
		})

		return
	}

	s.log.Log(ctx, &models.LogEntry{
		Action:  models.LogActionCronCleanup,
		Status:  models.LogStatusSuccess,
		Summary: fmt.Sprintf("Scheduled log cleanup removed %d entries", removed),
		Deleted: int(removed),
	})
}
