// Package redis provides the Redis-backed operation state repository.
// Operation state is short-lived keyed data with a TTL, which maps
// directly onto Redis key expiry.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "reaper:operation:"

// OperationStateRepository stores one OperationState per acting user
// under reaper:operation:<user>, expiring with the supplied TTL.
type OperationStateRepository struct {
	client goredis.UniversalClient
	logger *slog.Logger
}

// NewOperationStateRepository connects to Redis using a redis:// URL and
// verifies the connection before returning.
func NewOperationStateRepository(ctx context.Context, logger *slog.Logger, redisURL string) (*OperationStateRepository, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return &OperationStateRepository{
		client: client,
		logger: logger.With("module", "redis_operation_state"),
	}, nil
}

func (r *OperationStateRepository) Save(ctx context.Context, userID string, state *models.OperationState, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = models.DefaultStateTTL
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal operation state: %w", err)
	}

	err = r.client.Set(ctx, keyPrefix+userID, payload, ttl).Err()
	if err != nil {
		return persistence.NewStoreError("Save", userID, err)
	}

	return nil
}

func (r *OperationStateRepository) Get(ctx context.Context, userID string) (*models.OperationState, error) {
	payload, err := r.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.ErrStateNotFound
		}

		return nil, persistence.NewStoreError("Get", userID, err)
	}

	var state models.OperationState

	err = json.Unmarshal(payload, &state)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation state: %w", err)
	}

	return &state, nil
}

func (r *OperationStateRepository) Delete(ctx context.Context, userID string) error {
	err := r.client.Del(ctx, keyPrefix+userID).Err()
	if err != nil {
		return persistence.NewStoreError("Delete", userID, err)
	}

	return nil
}

func (r *OperationStateRepository) HealthCheck(ctx context.Context) error {
	err := r.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return nil
}

func (r *OperationStateRepository) Close(_ context.Context) error {
	err := r.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	return nil
}
