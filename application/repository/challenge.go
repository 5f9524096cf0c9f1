package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rollcall.io/infrastructure/database/repository/cache"
)

// ChallengeStore keeps issued liveness challenge seeds in redis.
type ChallengeStore struct {
	Cache *cache.RedisRepository
}

func challengeKey(id string) string {
	return fmt.Sprintf("challenge:%s", id)
}

func (s ChallengeStore) Save(ctx context.Context, id string, seed int64, ttl time.Duration) error {
	return s.Cache.CreateEntry(ctx, challengeKey(id), strconv.FormatInt(seed, 10), ttl)
}

func (s ChallengeStore) Take(ctx context.Context, id string) (int64, bool, error) {
	value, err := s.Cache.TakeOne(ctx, challengeKey(id))
	if err != nil || value == nil {
		return 0, false, err
	}
	seed, err := strconv.ParseInt(*value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt challenge seed for %s: %w", id, err)
	}
	return seed, true, nil
}
