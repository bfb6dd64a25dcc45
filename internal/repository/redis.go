package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/caseflow-app/client-aggregator/internal/common"
)

const redisKeyPrefix = "import:session:"

// RedisStore persists session snapshots in Redis, for deployments where
// multiple importer instances share one recovery store.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, log: logger}
}

func (s *RedisStore) Put(ctx context.Context, id uuid.UUID, state []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+id.String(), state, 0).Err(); err != nil {
		s.log.Error("session snapshot write failed", "session_id", id, "error", err)
		return fmt.Errorf("put session %s: %w", id, common.ErrStoreUnavailable)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	state, err := s.client.Get(ctx, redisKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		s.log.Error("session snapshot read failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("get session %s: %w", id, common.ErrStoreUnavailable)
	}
	return state, nil
}

func (s *RedisStore) List(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw := iter.Val()[len(redisKeyPrefix):]
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", common.ErrStoreUnavailable)
	}
	return ids, nil
}
