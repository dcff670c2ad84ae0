package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	returnsapp "github.com/retailpos/backend/internal/application/returns"
	"go.uber.org/zap"
)

const returnCacheKeyPrefix = "returns:view:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisReturnCache caches return read models in Redis as JSON with a TTL.
// Cache failures are logged and swallowed: a broken cache degrades reads to
// the repository, it never fails a request.
type RedisReturnCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisReturnCache creates a Redis-backed return cache and verifies the
// connection with a short ping
func NewRedisReturnCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisReturnCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReturnCacheWithClient(client, ttl, logger), nil
}

// NewRedisReturnCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisReturnCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisReturnCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisReturnCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached response and true on a hit
func (c *RedisReturnCache) Get(ctx context.Context, returnID uuid.UUID) (*returnsapp.ReturnResponse, bool) {
	data, err := c.client.Get(ctx, c.key(returnID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("return cache read failed",
				zap.String("return_id", returnID.String()),
				zap.Error(err))
		}
		return nil, false
	}

	var response returnsapp.ReturnResponse
	if err := json.Unmarshal(data, &response); err != nil {
		c.logger.Warn("return cache entry corrupted, dropping",
			zap.String("return_id", returnID.String()),
			zap.Error(err))
		c.Invalidate(ctx, returnID)
		return nil, false
	}
	return &response, true
}

// Set stores the response
func (c *RedisReturnCache) Set(ctx context.Context, response *returnsapp.ReturnResponse) {
	if response == nil {
		return
	}
	data, err := json.Marshal(response)
	if err != nil {
		c.logger.Warn("return cache marshal failed",
			zap.String("return_id", response.ID.String()),
			zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(response.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("return cache write failed",
			zap.String("return_id", response.ID.String()),
			zap.Error(err))
	}
}

// Invalidate drops the cached entry after a state change
func (c *RedisReturnCache) Invalidate(ctx context.Context, returnID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(returnID)).Err(); err != nil {
		c.logger.Warn("return cache invalidation failed",
			zap.String("return_id", returnID.String()),
			zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisReturnCache) Close() error {
	return c.client.Close()
}

func (c *RedisReturnCache) key(returnID uuid.UUID) string {
	return returnCacheKeyPrefix + returnID.String()
}

// Ensure RedisReturnCache implements ReturnCache
var _ returnsapp.ReturnCache = (*RedisReturnCache)(nil)
