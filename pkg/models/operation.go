package models

import "time"

const (
	// DefaultBatchSize matches the value suggested to operators for
	// constrained hosting.
	DefaultBatchSize = 50
	MinBatchSize     = 1
	MaxBatchSize     = 1000

	// MaxBatchPause bounds the inter-batch pause an operator may request.
	MaxBatchPause = 60 * time.Second

	// DefaultStateTTL is how long an abandoned operation survives before
	// its persisted state expires.
	DefaultStateTTL = time.Hour
)

// OperationSettings captures the selection criteria of one Find action.
// It is persisted per acting user and consulted by every later step of
// the operation.
type OperationSettings struct {
	ContentType      string  `json:"content_type"`
	Taxonomy         string  `json:"taxonomy"`
	TermFilter       string  `json:"term_filter,omitempty"`
	DeleteEmptyTerms bool    `json:"delete_empty_terms"`
	CandidateTermIDs []int64 `json:"candidate_term_ids,omitempty"`
}

// OperationState is the full persisted state of one operation: the
// settings plus the ordered list of item IDs the Find matched. Both are
// created together and deleted together.
type OperationState struct {
	Settings  OperationSettings `json:"settings"`
	TargetIDs []int64           `json:"target_ids"`
	CreatedAt time.Time         `json:"created_at"`
}

// ClampBatchSize forces a caller-supplied batch size into the configured
// bounds, falling back to the default when unset.
func ClampBatchSize(size int) int {
	if size <= 0 {
		return DefaultBatchSize
	}

	if size < MinBatchSize {
		return MinBatchSize
	}

	if size > MaxBatchSize {
		return MaxBatchSize
	}

	return size
}

// ClampBatchPause forces a caller-supplied pause into [0, MaxBatchPause].
func ClampBatchPause(pause time.Duration) time.Duration {
	if pause < 0 {
		return 0
	}

	if pause > MaxBatchPause {
		return MaxBatchPause
	}

	return pause
}
