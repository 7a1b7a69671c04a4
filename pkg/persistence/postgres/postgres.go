// Package postgres provides the PostgreSQL persistence implementation
// for the activity log and the content store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/contentools/reaper/pkg/persistence/sqlbase"
	_ "github.com/lib/pq" // postgres driver
)

// Persistence bundles the PostgreSQL-backed repositories over one
// connection pool.
type Persistence struct {
	db          *sql.DB
	logger      *slog.Logger
	activityLog *ActivityLogRepository
	content     *ContentRepository
}

// NewPersistence connects to PostgreSQL, runs migrations, and returns
// the repository bundle.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:          database,
		logger:      logger,
		activityLog: NewActivityLogRepository(database, logger),
		content:     NewContentRepository(database, logger),
	}, nil
}

// ActivityLog returns the log-entry repository.
func (p *Persistence) ActivityLog() *ActivityLogRepository {
	return p.activityLog
}

// Content returns the item/term repository.
func (p *Persistence) Content() *ContentRepository {
	return p.content
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
