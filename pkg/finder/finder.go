// Package finder resolves bulk-deletion criteria into the concrete set
// of items an operation will target.
package finder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/contentools/reaper/pkg/activitylog"
	"github.com/contentools/reaper/pkg/eventbus"
	"github.com/contentools/reaper/pkg/events"
	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/otelhelper"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/contentools/reaper/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// QueryFilter can adjust the resolved item query before it is executed.
// Filters run in registration order after validation and term matching.
type QueryFilter func(ctx context.Context, query *persistence.ItemQuery) error

// Result is the outcome of one Find: the matched items in their fixed
// processing order plus the human-readable match messages.
type Result struct {
	Count    int
	Items    []models.Item
	Messages []string
}

// Finder is the entry point of an operation. It validates the selection,
// resolves matching items, and persists the operation state consumed by
// the batch executor.
type Finder struct {
	registry *registry.Registry
	content  persistence.ContentRepository
	states   persistence.OperationStateRepository
	log      *activitylog.Logger
	bus      eventbus.EventPublisher
	logger   *slog.Logger
	tracer   trace.Tracer
	filters  []QueryFilter
}

func NewFinder(
	reg *registry.Registry,
	content persistence.ContentRepository,
	states persistence.OperationStateRepository,
	log *activitylog.Logger,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Finder {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("finder")
	}

	return &Finder{
		registry: reg,
		content:  content,
		states:   states,
		log:      log,
		bus:      bus,
		logger:   logger.With("module", "finder"),
		tracer:   tracer,
	}
}

// AddQueryFilter registers an extension that may adjust the item query.
func (f *Finder) AddQueryFilter(filter QueryFilter) {
	f.filters = append(f.filters, filter)
}

// Find resolves the selection into items and persists the operation state
// for the acting user. A selection that matches nothing is not an error:
// it clears any prior state and returns a zero result.
func (f *Finder) Find(ctx context.Context, userID string, settings models.OperationSettings) (*Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, f.tracer, "finder.find",
		attribute.String(otelhelper.ContentTypeKey, settings.ContentType),
		attribute.String(otelhelper.TaxonomyKey, settings.Taxonomy),
		attribute.String(otelhelper.TermFilterKey, settings.TermFilter),
		attribute.String(otelhelper.ActingUserKey, userID),
	)
	defer span.End()

	err := f.registry.ValidatePair(settings.ContentType, settings.Taxonomy)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	messages := make([]string, 0)
	queryTermIDs := make([]int64, 0)
	settings.CandidateTermIDs = nil

	switch {
	case settings.TermFilter != "":
		matched, err := f.matchTerms(ctx, settings.Taxonomy, settings.TermFilter)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		if len(matched) == 0 {
			messages = append(messages, fmt.Sprintf("No terms of %q matched the filter %q", settings.Taxonomy, settings.TermFilter))

			return f.finishZero(ctx, userID, settings, messages)
		}

		for _, term := range matched {
			queryTermIDs = append(queryTermIDs, term.ID)
			messages = append(messages, fmt.Sprintf("Term %q (%s) matched the filter", term.Name, term.Slug))
		}

		settings.CandidateTermIDs = queryTermIDs

	case settings.DeleteEmptyTerms:
		terms, err := f.content.ListTerms(ctx, settings.Taxonomy)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, fmt.Errorf("failed to list terms of %q: %w", settings.Taxonomy, err)
		}

		candidates := make([]int64, 0, len(terms))
		for _, term := range terms {
			candidates = append(candidates, term.ID)
		}

		settings.CandidateTermIDs = candidates
	}

	query := persistence.ItemQuery{
		ContentType: settings.ContentType,
		Taxonomy:    settings.Taxonomy,
		TermIDs:     queryTermIDs,
	}

	for _, filter := range f.filters {
		err = filter(ctx, &query)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, fmt.Errorf("query filter rejected the selection: %w", err)
		}
	}

	ids, err := f.content.FindItemIDs(ctx, query)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	span.SetAttributes(attribute.Int(otelhelper.FoundCountKey, len(ids)))

	if len(ids) == 0 {
		return f.finishZero(ctx, userID, settings, messages)
	}

	items := make([]models.Item, 0, len(ids))

	for _, id := range ids {
		title, err := f.content.ItemTitle(ctx, id)
		if err != nil {
			title = fmt.Sprintf("item %d", id)
		}

		items = append(items, models.Item{ID: id, Title: title})
	}

	state := &models.OperationState{
		Settings:  settings,
		TargetIDs: ids,
		CreatedAt: time.Now().UTC(),
	}

	err = f.states.Save(ctx, userID, state, models.DefaultStateTTL)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to persist operation state: %w", err)
	}

	messages = append(messages, fmt.Sprintf("Found %d items of type %q", len(ids), settings.ContentType))

	f.logFind(ctx, userID, settings, len(ids), messages)
	f.publishFound(ctx, userID, settings, len(ids))

	return &Result{
		Count:    len(ids),
		Items:    items,
		Messages: messages,
	}, nil
}

// matchTerms returns the taxonomy terms whose name or slug contains the
// filter text, case-insensitive. Terms with zero items are included.
func (f *Finder) matchTerms(ctx context.Context, taxonomy, filter string) ([]*models.Term, error) {
	terms, err := f.content.ListTerms(ctx, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms of %q: %w", taxonomy, err)
	}

	needle := strings.ToLower(filter)
	matched := make([]*models.Term, 0)

	for _, term := range terms {
		if strings.Contains(strings.ToLower(term.Name), needle) ||
			strings.Contains(strings.ToLower(term.Slug), needle) {
			matched = append(matched, term)
		}
	}

	return matched, nil
}

// finishZero handles the no-results outcome: prior state is cleared so a
// stale target list cannot be consumed by a later batch call.
func (f *Finder) finishZero(ctx context.Context, userID string, settings models.OperationSettings, messages []string) (*Result, error) {
	err := f.states.Delete(ctx, userID)
	if err != nil && !persistence.IsStateNotFound(err) {
		return nil, fmt.Errorf("failed to clear operation state: %w", err)
	}

	messages = append(messages, "No items matched the selection")

	f.logFind(ctx, userID, settings, 0, messages)
	f.publishFound(ctx, userID, settings, 0)

	return &Result{Count: 0, Items: []models.Item{}, Messages: messages}, nil
}

func (f *Finder) logFind(ctx context.Context, userID string, settings models.OperationSettings, found int, messages []string) {
	status := models.LogStatusSuccess
	if found == 0 {
		status = models.LogStatusInfo
	}

	f.log.Log(ctx, &models.LogEntry{
		Action:     models.LogActionFind,
		Status:     status,
		Summary:    fmt.Sprintf("Find matched %d items of type %q", found, settings.ContentType),
		Criteria:   &settings,
		Found:      found,
		Details:    messages,
		ActingUser: userID,
	})
}

func (f *Finder) publishFound(ctx context.Context, userID string, settings models.OperationSettings, found int) {
	event := events.OperationFound{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.OperationFoundEvent,
			Timestamp:  time.Now().UTC(),
			ActingUser: userID,
		},
		Criteria: settings,
		Found:    found,
	}

	err := f.bus.Publish(ctx, userID, event)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to publish operation.found event", "error", err)
	}
}
