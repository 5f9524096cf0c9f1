package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"rollcall.io/infrastructure/env"
	"rollcall.io/infrastructure/logger"
)

type RedisConnection struct {
	Client *redis.Client
}

var (
	instance *RedisConnection
	mu       sync.RWMutex
)

func ConnectToCache(cfg env.Config) error {
	if cfg.RedisAddr == "" {
		logger.Error("redis address missing")
		return errors.New("REDIS_ADDR is not set")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("could not reach redis", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}

	SetClient(client)
	logger.Info("connected to redis successfully")
	return nil
}

// SetClient installs an already built client. Tests use it with miniredis.
func SetClient(client *redis.Client) {
	mu.Lock()
	defer mu.Unlock()
	instance = &RedisConnection{Client: client}
}

func GetInstance() (*RedisConnection, error) {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil, errors.New("redis is not connected")
	}
	return instance, nil
}

func Disconnect() {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		return
	}
	if err := instance.Client.Close(); err != nil {
		logger.Error("error closing redis client", logger.LoggerOptions{Key: "error", Data: err})
	}
	instance = nil
}
