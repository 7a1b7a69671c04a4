// Package events defines the operation lifecycle events published while
// a bulk deletion runs.
package events

import (
	"time"

	"github.com/contentools/reaper/pkg/models"
)

type EventType string

// Topic is the stream all operation events are published to.
const Topic = "reaper.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	OperationFoundEvent     EventType = "operation.found"
	BatchProcessedEvent     EventType = "batch.processed"
	OperationCompletedEvent EventType = "operation.completed"
	TermsCleanedEvent       EventType = "terms.cleaned"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	ActingUser string    `json:"acting_user"`
}

func (e BaseEvent) GetType() EventType {
	return e.Type
}

// OperationFound is published after every Find, successful or empty.
type OperationFound struct {
	BaseEvent

	Criteria models.OperationSettings `json:"criteria"`
	Found    int                      `json:"found"`
}

// BatchProcessed is published after each batch finishes on the server.
type BatchProcessed struct {
	BaseEvent

	Attempted   int  `json:"attempted"`
	Deleted     int  `json:"deleted"`
	Errors      int  `json:"errors"`
	IsLastBatch bool `json:"is_last_batch"`
}

// OperationCompleted is published once, when the last batch has been
// processed and cleanup has run.
type OperationCompleted struct {
	BaseEvent

	Criteria     models.OperationSettings `json:"criteria"`
	TargetCount  int                      `json:"target_count"`
	TermsDeleted int                      `json:"terms_deleted"`
	TermErrors   int                      `json:"term_errors"`
}

// TermsCleaned is published after the term cleanup pass.
type TermsCleaned struct {
	BaseEvent

	Taxonomy string `json:"taxonomy"`
	Checked  int    `json:"checked"`
	Deleted  int    `json:"deleted"`
	Errors   int    `json:"errors"`
}
