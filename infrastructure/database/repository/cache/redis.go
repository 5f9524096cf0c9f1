package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	apperrors "rollcall.io/application/appErrors"
	redisClient "rollcall.io/infrastructure/database/connection/cache"
	"rollcall.io/infrastructure/logger"
)

// RedisRepository is the key value surface used for short lived state.
// Client is resolved lazily from the shared connection when left nil.
type RedisRepository struct {
	Client *redis.Client

	mu sync.Mutex
}

func (redisRepo *RedisRepository) preRequest() error {
	redisRepo.mu.Lock()
	defer redisRepo.mu.Unlock()
	if redisRepo.Client == nil {
		conn, err := redisClient.GetInstance()
		if err != nil {
			return apperrors.StoreError("redis", err)
		}
		redisRepo.Client = conn.Client
		logger.Info("redis repository initialisation complete")
	}
	return nil
}

func (redisRepo *RedisRepository) CreateEntry(ctx context.Context, key string, payload interface{}, ttl time.Duration) error {
	if err := redisRepo.preRequest(); err != nil {
		return err
	}
	if err := redisRepo.Client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return apperrors.StoreError("CreateEntry", err)
	}
	return nil
}

// FindOne returns nil without error for a missing key.
func (redisRepo *RedisRepository) FindOne(ctx context.Context, key string) (*string, error) {
	if err := redisRepo.preRequest(); err != nil {
		return nil, err
	}
	result, err := redisRepo.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logger.Error("redis error occured while running FindOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil, apperrors.StoreError("FindOne", err)
	}
	return &result, nil
}

// TakeOne reads and deletes key atomically. Concurrent callers see the value at most once.
func (redisRepo *RedisRepository) TakeOne(ctx context.Context, key string) (*string, error) {
	if err := redisRepo.preRequest(); err != nil {
		return nil, err
	}
	result, err := redisRepo.Client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logger.Error("redis error occured while running TakeOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil, apperrors.StoreError("TakeOne", err)
	}
	return &result, nil
}

func (redisRepo *RedisRepository) DeleteOne(ctx context.Context, key string) (bool, error) {
	if err := redisRepo.preRequest(); err != nil {
		return false, err
	}
	result, err := redisRepo.Client.Del(ctx, key).Result()
	if err != nil {
		logger.Error("redis error occured while running DeleteOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false, apperrors.StoreError("DeleteOne", err)
	}
	return result == 1, nil
}

// IncrementField adds amount to key and refreshes its ttl when ttl is positive.
func (redisRepo *RedisRepository) IncrementField(ctx context.Context, key string, amount int64, ttl time.Duration) (int64, error) {
	if err := redisRepo.preRequest(); err != nil {
		return 0, err
	}
	pipe := redisRepo.Client.TxPipeline()
	incr := pipe.IncrBy(ctx, key, amount)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("redis error occured while running IncrementField", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return 0, apperrors.StoreError("IncrementField", err)
	}
	return incr.Val(), nil
}

// FindInt returns 0 for a missing key.
func (redisRepo *RedisRepository) FindInt(ctx context.Context, key string) (int64, error) {
	if err := redisRepo.preRequest(); err != nil {
		return 0, err
	}
	result, err := redisRepo.Client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		logger.Error("redis error occured while running FindInt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return 0, apperrors.StoreError("FindInt", err)
	}
	return result, nil
}
