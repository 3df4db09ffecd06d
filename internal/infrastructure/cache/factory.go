package cache

import (
	"fmt"
	"io"
	"time"

	"github.com/rental/backoffice/internal/domain/catalog"
	"github.com/rental/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// EquipmentCache is a catalog.EquipmentCache that owns resources to release
type EquipmentCache interface {
	catalog.EquipmentCache
	io.Closer
}

// EquipmentCacheFactory creates equipment caches based on configuration
type EquipmentCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*EquipmentCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *EquipmentCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *EquipmentCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewEquipmentCacheFactory creates a new factory
func NewEquipmentCacheFactory(redisCfg config.RedisConfig, ttl time.Duration, opts ...FactoryOption) *EquipmentCacheFactory {
	f := &EquipmentCacheFactory{
		redisConfig:           redisCfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache connects to Redis and returns a cache owning the client
func (f *EquipmentCacheFactory) CreateRedisCache() (EquipmentCache, error) {
	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis equipment cache: %w", err)
	}
	return &ownedRedisCache{
		RedisEquipmentCache: NewRedisEquipmentCache(client, f.ttl, WithCacheLogger(f.logger)),
		closer:              client,
	}, nil
}

// CreateInMemoryCache creates a process-local cache
func (f *EquipmentCacheFactory) CreateInMemoryCache() EquipmentCache {
	return NewInMemoryEquipmentCache(f.ttl)
}

// CreateCache prefers Redis and falls back to memory when allowed
func (f *EquipmentCacheFactory) CreateCache() (EquipmentCache, error) {
	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis equipment cache")
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for equipment cache but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory equipment cache. "+
		"Instances will not share catalog lookups.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}

type ownedRedisCache struct {
	*RedisEquipmentCache
	closer io.Closer
}

func (c *ownedRedisCache) Close() error {
	return c.closer.Close()
}
