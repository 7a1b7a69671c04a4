package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/lib/pq"
)

// ContentRepository implements the content-store boundary over the
// items, terms, and item_terms tables.
type ContentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *sql.DB, logger *slog.Logger) *ContentRepository {
	return &ContentRepository{db: db, logger: logger}
}

func (r *ContentRepository) FindItemIDs(ctx context.Context, query persistence.ItemQuery) ([]int64, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if len(query.TermIDs) > 0 {
		sqlQuery := `
			SELECT DISTINCT i.id
			FROM items i
			JOIN item_terms it ON it.item_id = i.id
			WHERE i.content_type = $1
			  AND it.taxonomy = $2
			  AND it.term_id = ANY($3)
			ORDER BY i.id
		`
		rows, err = r.db.QueryContext(ctx, sqlQuery, query.ContentType, query.Taxonomy, pq.Array(query.TermIDs))
	} else {
		sqlQuery := `
			SELECT id
			FROM items
			WHERE content_type = $1
			ORDER BY id
		`
		rows, err = r.db.QueryContext(ctx, sqlQuery, query.ContentType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	ids := make([]int64, 0)

	for rows.Next() {
		var id int64

		err = rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item ID: %w", err)
		}

		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return ids, nil
}

func (r *ContentRepository) ItemTitle(ctx context.Context, id int64) (string, error) {
	var title string

	err := r.db.QueryRowContext(ctx, "SELECT title FROM items WHERE id = $1", id).Scan(&title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", persistence.ErrItemNotFound
		}

		return "", fmt.Errorf("failed to query item title: %w", err)
	}

	return title, nil
}

func (r *ContentRepository) DeleteItem(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted items: %w", err)
	}

	if affected == 0 {
		return persistence.ErrItemNotFound
	}

	return nil
}

func (r *ContentRepository) ListTerms(ctx context.Context, taxonomy string) ([]*models.Term, error) {
	query := `
		SELECT id, name, slug, count
		FROM terms
		WHERE taxonomy = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	terms := make([]*models.Term, 0)

	for rows.Next() {
		var term models.Term

		err = rows.Scan(&term.ID, &term.Name, &term.Slug, &term.Count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}

		terms = append(terms, &term)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating terms: %w", err)
	}

	return terms, nil
}

func (r *ContentRepository) GetTerm(ctx context.Context, id int64, taxonomy string) (*models.Term, error) {
	var term models.Term

	query := "SELECT id, name, slug, count FROM terms WHERE taxonomy = $1 AND id = $2"

	err := r.db.QueryRowContext(ctx, query, taxonomy, id).Scan(&term.ID, &term.Name, &term.Slug, &term.Count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTermNotFound
		}

		return nil, fmt.Errorf("failed to query term: %w", err)
	}

	return &term, nil
}

func (r *ContentRepository) RefreshTermCounts(ctx context.Context, ids []int64, taxonomy string) error {
	query := `
		UPDATE terms t
		SET count = (
			SELECT COUNT(*)
			FROM item_terms it
			WHERE it.taxonomy = t.taxonomy AND it.term_id = t.id
		)
		WHERE t.taxonomy = $1 AND t.id = ANY($2)
	`

	_, err := r.db.ExecContext(ctx, query, taxonomy, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to refresh term counts: %w", err)
	}

	return nil
}

func (r *ContentRepository) DeleteTerm(ctx context.Context, id int64, taxonomy string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM terms WHERE taxonomy = $1 AND id = $2", taxonomy, id)
	if err != nil {
		return fmt.Errorf("failed to delete term: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted terms: %w", err)
	}

	if affected == 0 {
		return persistence.ErrTermNotFound
	}

	return nil
}

func (r *ContentRepository) HealthCheck(ctx context.Context) error {
	err := r.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (r *ContentRepository) Close(_ context.Context) error {
	return nil
}
