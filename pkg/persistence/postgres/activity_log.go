package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/google/uuid"
)

// ActivityLogRepository persists log entries in the log_entries table.
type ActivityLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewActivityLogRepository creates a new activity log repository.
func NewActivityLogRepository(db *sql.DB, logger *slog.Logger) *ActivityLogRepository {
	return &ActivityLogRepository{db: db, logger: logger}
}

func (r *ActivityLogRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var criteria any

	if entry.Criteria != nil {
		payload, err := json.Marshal(entry.Criteria)
		if err != nil {
			return fmt.Errorf("failed to marshal criteria: %w", err)
		}

		criteria = payload
	}

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	query := `
		INSERT INTO log_entries (
			id, action, status, summary, criteria,
			found, attempted, deleted, errors, details,
			acting_user, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID, string(entry.Action), string(entry.Status), entry.Summary, criteria,
		entry.Found, entry.Attempted, entry.Deleted, entry.Errors, details,
		entry.ActingUser, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

func (r *ActivityLogRepository) List(ctx context.Context, filter persistence.LogFilter) ([]*models.LogEntry, error) {
	query := `
		SELECT
			id
		  , action
		  , status
		  , summary
		  , criteria
		  , found
		  , attempted
		  , deleted
		  , errors
		  , details
		  , acting_user
		  , created_at
		FROM log_entries
		WHERE ($1 = '' OR action = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, query, string(filter.Action), string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	entries := make([]*models.LogEntry, 0)

	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating log entries: %w", err)
	}

	return entries, nil
}

func (r *ActivityLogRepository) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	result, err := r.db.ExecContext(ctx, "DELETE FROM log_entries WHERE created_at <= $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge log entries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged log entries: %w", err)
	}

	return removed, nil
}

func (r *ActivityLogRepository) HealthCheck(ctx context.Context) error {
	err := r.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (r *ActivityLogRepository) Close(_ context.Context) error {
	return nil
}

func scanLogEntry(rows *sql.Rows) (*models.LogEntry, error) {
	var (
		entry      models.LogEntry
		action     string
		status     string
		criteria   []byte
		details    []byte
		actingUser sql.NullString
	)

	err := rows.Scan(
		&entry.ID, &action, &status, &entry.Summary, &criteria,
		&entry.Found, &entry.Attempted, &entry.Deleted, &entry.Errors, &details,
		&actingUser, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Action = models.LogAction(action)
	entry.Status = models.LogStatus(status)
	entry.ActingUser = actingUser.String

	if len(criteria) > 0 {
		entry.Criteria = &models.OperationSettings{}

		err = json.Unmarshal(criteria, entry.Criteria)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal criteria: %w", err)
		}
	}

	if len(details) > 0 {
		err = json.Unmarshal(details, &entry.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal details: %w", err)
		}
	}

	return &entry, nil
}
