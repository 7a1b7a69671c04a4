package web

import "github.com/contentools/reaper/pkg/models"

// UserHeader carries the acting user an authenticated caller operates
// as. Operation state is keyed by this value.
const UserHeader = "X-Reaper-User"

// FindRequest selects the items of one bulk-deletion operation.
type FindRequest struct {
	ContentType      string `json:"content_type"          validate:"required"`
	Taxonomy         string `json:"taxonomy"              validate:"required"`
	TermFilter       string `json:"term_filter,omitempty"`
	DeleteEmptyTerms bool   `json:"delete_empty_terms"`
}

// FindResponse lists the matched items in their fixed processing order.
type FindResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Items    []models.Item `json:"items"`
	Count    int           `json:"count"`
	Messages []string      `json:"messages,omitempty"`
}

// BatchRequest carries one slice of the target list. IsLastBatch is
// computed by the client from the remaining queue after the slice is
// taken.
type BatchRequest struct {
	IDs         []int64 `json:"ids" validate:"required,min=1"`
	IsLastBatch bool    `json:"is_last_batch"`
}

// BatchResponse reports one batch outcome. With per-item errors the same
// shape is returned under HTTP 422: callers must read the counts, not
// only the success flag.
type BatchResponse struct {
	Success               bool     `json:"success"`
	Message               string   `json:"message"`
	AttemptedCount        int      `json:"attempted_count"`
	DeletedCount          int      `json:"deleted_count"`
	ErrorCount            int      `json:"error_count"`
	Details               []string `json:"details,omitempty"`
	FinalOperationMessage string   `json:"final_operation_message,omitempty"`
}

// PurgeResponse reports a manual log purge.
type PurgeResponse struct {
	Removed int64 `json:"removed"`
}

// LogsResponse lists activity-log entries, newest first.
type LogsResponse struct {
	Entries []*models.LogEntry `json:"entries"`
	Count   int                `json:"count"`
}

// ContentTypesResponse lists the deletable content types and their
// taxonomies.
type ContentTypesResponse struct {
	ContentTypes []*models.ContentType `json:"content_types"`
}
