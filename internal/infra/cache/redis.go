package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/taxbot-india/engine-go/internal/infra/resilience"
)

const redisOpTimeout = 2 * time.Second

// Redis is a Redis-backed cache with TTL. Values are stored as JSON.
// All operations run behind the shared circuit breaker with retry, so a
// degraded Redis degrades to cache misses instead of failing requests.
type Redis[T any] struct {
	client *redis.Client
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker
	cfg    resilience.Config
	logger *zap.Logger
}

// NewRedis connects a Redis-backed cache. The connection is lazy; the first
// operation establishes it.
func NewRedis[T any](addr string, ttl time.Duration, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Redis[T] {
	return &Redis[T]{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		cb:     cb,
		cfg:    cfg,
		logger: logger,
	}
}

// Get retrieves and unmarshals a value. Any backend failure reads as a miss.
func (r *Redis[T]) Get(key string) (T, bool) {
	var zero T

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var payload string
	miss := false
	_, err := r.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, r.cfg, func() error {
			val, err := r.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				miss = true
				return nil
			}
			if err != nil {
				return err
			}
			payload = val
			return nil
		})
	})
	if err != nil {
		r.logger.Debug("redis get failed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	if miss {
		return zero, false
	}

	var value T
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		r.logger.Warn("redis cache entry is not valid JSON, dropping",
			zap.String("key", key), zap.Error(err))
		r.Delete(key)
		return zero, false
	}
	return value, true
}

// Set marshals and stores a value with the configured TTL. Failures are
// logged and swallowed; the cache is best-effort.
func (r *Redis[T]) Set(key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("redis set: marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if _, err := r.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, r.cfg, func() error {
			return r.client.Set(ctx, key, data, r.ttl).Err()
		})
	}); err != nil {
		r.logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a key. Failures are swallowed.
func (r *Redis[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if _, err := r.cb.Execute(func() (any, error) {
		return nil, r.client.Del(ctx, key).Err()
	}); err != nil {
		r.logger.Debug("redis delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Ping checks connectivity, for the /healthz probe.
func (r *Redis[T]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
