package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codetrack/backend/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// Init connects the optional redis client. With no REDIS_HOST configured, or
// when the ping fails, caching and rate limiting quietly stay disabled and
// the application runs fully without redis.
func Init(cfg *config.Config, logger *zap.Logger) error {
	if cfg.RedisHost == "" {
		logger.Info("redis_disabled")
		return nil
	}

	addr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	c := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		logger.Warn("redis_connection_failed",
			zap.Error(err),
			zap.String("addr", addr),
		)
		return err
	}

	client = c
	logger.Info("redis_connected", zap.String("addr", addr))
	return nil
}

func Enabled() bool {
	return client != nil
}

func Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return client.Set(ctx, key, data, expiration).Err()
}

func Get(key string, dest interface{}) error {
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("cache miss: %w", err)
	} else if err != nil {
		return fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return nil
}

func Delete(key string) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, key).Err()
}

// IncrementCounter bumps a counter key and sets its TTL on the first
// increment. Used by the rate limiter.
func IncrementCounter(key string, expiration time.Duration) (int64, error) {
	val, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		if err := client.Expire(ctx, key, expiration).Err(); err != nil {
			return val, err
		}
	}
	return val, nil
}

func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
