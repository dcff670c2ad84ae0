package cache

import (
	"time"

	returnsapp "github.com/retailpos/backend/internal/application/returns"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReturnCacheFactory creates return caches based on configuration
type ReturnCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReturnCacheFactoryOption is a functional option for configuring the factory
type ReturnCacheFactoryOption func(*ReturnCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReturnCacheFactoryOption {
	return func(f *ReturnCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ReturnCacheFactoryOption {
	return func(f *ReturnCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReturnCacheFactory creates a new factory
func NewReturnCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...ReturnCacheFactoryOption) *ReturnCacheFactory {
	f := &ReturnCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a return cache. When Redis is enabled it is tried
// first; an unreachable Redis falls back to an in-memory cache unless
// fallback is disabled.
func (f *ReturnCacheFactory) CreateCache() (returnsapp.ReturnCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory return cache")
		return NewInMemoryReturnCache(f.ttl), nil
	}

	redisCache, err := NewRedisReturnCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl, f.logger)
	if err == nil {
		f.logger.Info("using Redis return cache")
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory return cache. "+
		"Cached entries will not be shared across instances.",
		zap.Error(err),
	)
	return NewInMemoryReturnCache(f.ttl), nil
}
