// Package cleanup removes taxonomy terms left empty after a completed
// bulk deletion.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/contentools/reaper/pkg/activitylog"
	"github.com/contentools/reaper/pkg/eventbus"
	"github.com/contentools/reaper/pkg/events"
	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/google/uuid"
)

// Result aggregates one cleanup pass. Skipped is true when the operation
// did not request cleanup or carried no candidates.
type Result struct {
	Skipped bool
	Checked int
	Deleted int
	Errors  int
	Details []string
}

// Cleaner deletes candidate terms whose recomputed item count is zero.
// It runs once per operation, from the last-batch path only.
type Cleaner struct {
	content persistence.ContentRepository
	log     *activitylog.Logger
	bus     eventbus.EventPublisher
	logger  *slog.Logger
}

func NewCleaner(
	content persistence.ContentRepository,
	log *activitylog.Logger,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
) *Cleaner {
	return &Cleaner{
		content: content,
		log:     log,
		bus:     bus,
		logger:  logger.With("module", "cleanup"),
	}
}

// Run checks every candidate term and deletes the ones that are empty.
// Term counts are recomputed first: the deletion pass that just finished
// may not have propagated counts synchronously, so stored counts cannot
// be trusted. Terms that still hold items are kept and not counted as
// errors.
func (c *Cleaner) Run(ctx context.Context, userID string, settings *models.OperationSettings) (*Result, error) {
	if settings == nil || !settings.DeleteEmptyTerms ||
		settings.Taxonomy == "" || len(settings.CandidateTermIDs) == 0 {
		c.log.Log(ctx, &models.LogEntry{
			Action:     models.LogActionTermCleanup,
			Status:     models.LogStatusInfo,
			Summary:    "Term cleanup skipped, not requested or no candidate terms",
			Criteria:   settings,
			ActingUser: userID,
		})

		return &Result{Skipped: true}, nil
	}

	err := c.content.RefreshTermCounts(ctx, settings.CandidateTermIDs, settings.Taxonomy)
	if err != nil {
		c.log.Log(ctx, &models.LogEntry{
			Action:     models.LogActionTermCleanup,
			Status:     models.LogStatusError,
			Summary:    fmt.Sprintf("Term cleanup aborted, failed to recompute term counts: %v", err),
			Criteria:   settings,
			ActingUser: userID,
		})

		return nil, fmt.Errorf("failed to recompute term counts: %w", err)
	}

	result := &Result{Details: make([]string, 0, len(settings.CandidateTermIDs))}

	for _, termID := range settings.CandidateTermIDs {
		result.Checked++
		c.checkTerm(ctx, termID, settings.Taxonomy, result)
	}

	status := models.LogStatusSuccess
	if result.Errors > 0 {
		status = models.LogStatusError
	}

	c.log.Log(ctx, &models.LogEntry{
		Action:     models.LogActionTermCleanup,
		Status:     status,
		Summary:    fmt.Sprintf("Term cleanup removed %d of %d candidate terms, %d errors", result.Deleted, result.Checked, result.Errors),
		Criteria:   settings,
		Deleted:    result.Deleted,
		Errors:     result.Errors,
		Details:    result.Details,
		ActingUser: userID,
	})

	c.publishCleaned(ctx, userID, settings.Taxonomy, result)

	return result, nil
}

// checkTerm re-fetches one candidate and deletes it when empty. A term
// that no longer resolves counts as an error, per-term failures never
// stop the pass.
func (c *Cleaner) checkTerm(ctx context.Context, termID int64, taxonomy string, result *Result) {
	term, err := c.content.GetTerm(ctx, termID, taxonomy)
	if err != nil {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("Term %d could not be loaded: %v", termID, err))

		return
	}

	if term.Count > 0 {
		result.Details = append(result.Details, fmt.Sprintf("Term %q (ID %d) still has %d items, kept", term.Name, term.ID, term.Count))

		return
	}

	err = c.content.DeleteTerm(ctx, termID, taxonomy)
	if err != nil {
		result.Errors++
		result.Details = append(result.Details, fmt.Sprintf("Failed to delete empty term %q (ID %d): %v", term.Name, term.ID, err))

		return
	}

	result.Deleted++
	result.Details = append(result.Details, fmt.Sprintf("Deleted empty term %q (ID %d)", term.Name, term.ID))
}

func (c *Cleaner) publishCleaned(ctx context.Context, userID, taxonomy string, result *Result) {
	event := events.TermsCleaned{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.TermsCleanedEvent,
			Timestamp:  time.Now().UTC(),
			ActingUser: userID,
		},
		Taxonomy: taxonomy,
		Checked:  result.Checked,
		Deleted:  result.Deleted,
		Errors:   result.Errors,
	}

	err := c.bus.Publish(ctx, userID, event)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to publish terms.cleaned event", "error", err)
	}
}
