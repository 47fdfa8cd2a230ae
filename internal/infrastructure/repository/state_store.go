package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/redis"
)

const stateKeyPrefix = "whoop:oauth_state:"

type stateStore struct {
	redis *redis.RedisClient
}

// NewStateStore backs the single-use OAuth state tokens with Redis. The TTL
// handles expiry; GETDEL handles single use atomically.
func NewStateStore(redisClient *redis.RedisClient) repository.StateStore {
	return &stateStore{
		redis: redisClient,
	}
}

func (s *stateStore) Save(ctx context.Context, state string, userID int64, ttl time.Duration) error {
	key := stateKeyPrefix + state
	if err := s.redis.Set(ctx, key, strconv.FormatInt(userID, 10), ttl); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

func (s *stateStore) Consume(ctx context.Context, state string) (int64, error) {
	key := stateKeyPrefix + state

	value, err := s.redis.GetDel(ctx, key)
	if errors.Is(err, goredis.Nil) {
		return 0, entity.ErrInvalidState
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume oauth state: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, entity.ErrInvalidState
	}

	return userID, nil
}
