// Package cache provides the Redis-backed estimate cache.  The cache is a
// latency optimisation only; every failure mode degrades to a miss and the
// caller recomputes.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ThermoCancel/internal/application/estimation"
	"github.com/turtacn/ThermoCancel/internal/config"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ThermoCancel/pkg/errors"
)

const defaultKeyPrefix = "thermocancel:estimate:"

// RedisEstimateCache stores finished estimation results in Redis as JSON
// documents under a configurable key prefix.
type RedisEstimateCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    logging.Logger
}

// NewRedisEstimateCache connects to Redis and verifies the connection.
func NewRedisEstimateCache(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*RedisEstimateCache, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis ping failed")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	logger.Named("cache").Info("redis estimate cache connected",
		logging.String("addr", cfg.Addr),
		logging.String("prefix", prefix))
	return &RedisEstimateCache{
		client:    client,
		keyPrefix: prefix,
		ttl:       cfg.DefaultTTL,
		logger:    logger.Named("cache"),
	}, nil
}

// Get implements estimation.EstimateCache; a missing key is (nil, nil).
func (c *RedisEstimateCache) Get(ctx context.Context, key string) (*estimation.Result, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "cache read failed")
	}
	var result estimation.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		// A corrupt entry is dropped so it cannot poison future reads.
		c.client.Del(ctx, c.keyPrefix+key)
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "corrupt cache entry")
	}
	return &result, nil
}

// Set implements estimation.EstimateCache.
func (c *RedisEstimateCache) Set(ctx context.Context, key string, result *estimation.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cannot encode cache entry")
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache write failed")
	}
	return nil
}

// Close releases the Redis client.
func (c *RedisEstimateCache) Close() error {
	return c.client.Close()
}
