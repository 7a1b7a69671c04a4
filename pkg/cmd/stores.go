// Package cmd wires shared infrastructure for the reaper binaries.
package cmd

import (
	"context"
	"log/slog"

	"github.com/contentools/reaper/pkg/persistence"
	"github.com/contentools/reaper/pkg/persistence/memory"
	"github.com/contentools/reaper/pkg/persistence/postgres"
	"github.com/contentools/reaper/pkg/persistence/redis"
)

// Stores bundles the three storage backends of the API server. Empty
// connection URLs fall back to in-memory stores for local development.
type Stores struct {
	States      persistence.OperationStateRepository
	ActivityLog persistence.ActivityLogRepository
	Content     persistence.ContentRepository

	closers []func(ctx context.Context) error
}

func NewStores(ctx context.Context, logger *slog.Logger, databaseURL, redisURL string) (*Stores, error) {
	stores := &Stores{}

	if databaseURL != "" {
		pg, err := postgres.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		stores.ActivityLog = pg.ActivityLog()
		stores.Content = pg.Content()
		stores.closers = append(stores.closers, pg.Close)
	} else {
		logger.Warn("No database URL configured, using in-memory content and log stores")

		stores.ActivityLog = memory.NewActivityLogRepository()
		stores.Content = memory.NewContentRepository()
	}

	if redisURL != "" {
		states, err := redis.NewOperationStateRepository(ctx, logger, redisURL)
		if err != nil {
			return nil, err
		}

		stores.States = states
		stores.closers = append(stores.closers, states.Close)
	} else {
		logger.Warn("No redis URL configured, using in-memory operation state")

		stores.States = memory.NewOperationStateRepository()
	}

	return stores, nil
}

func (s *Stores) Close(ctx context.Context) error {
	var firstErr error

	for _, closer := range s.closers {
		err := closer(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
