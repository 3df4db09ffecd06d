package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rental/backoffice/internal/domain/catalog"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "backoffice:equipment:"

// RedisEquipmentCache implements catalog.EquipmentCache using Redis, so
// several service instances share catalog lookups
type RedisEquipmentCache struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisEquipmentCacheOption is a functional option for configuring the cache
type RedisEquipmentCacheOption func(*RedisEquipmentCache)

// WithKeyPrefix overrides the key prefix
func WithKeyPrefix(prefix string) RedisEquipmentCacheOption {
	return func(c *RedisEquipmentCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisEquipmentCacheOption {
	return func(c *RedisEquipmentCache) {
		c.logger = logger
	}
}

// NewRedisEquipmentCache creates a cache on an existing client.
// The caller retains ownership of the client.
func NewRedisEquipmentCache(client redis.Cmdable, ttl time.Duration, opts ...RedisEquipmentCacheOption) *RedisEquipmentCache {
	c := &RedisEquipmentCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       ttl,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisEquipmentCache) key(id int64) string {
	return c.keyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached equipment, or nil, nil on a miss
func (c *RedisEquipmentCache) Get(ctx context.Context, id int64) (*catalog.Equipment, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment from cache: %w", err)
	}

	var eq catalog.Equipment
	if err := json.Unmarshal(data, &eq); err != nil {
		c.logger.Warn("Dropping corrupted equipment cache entry", zap.Int64("equipment_id", id), zap.Error(err))
		_ = c.client.Del(ctx, c.key(id))
		return nil, nil
	}
	return &eq, nil
}

// Set caches equipment for the configured TTL
func (c *RedisEquipmentCache) Set(ctx context.Context, eq *catalog.Equipment) error {
	if eq == nil {
		return nil
	}
	data, err := json.Marshal(eq)
	if err != nil {
		return fmt.Errorf("failed to marshal equipment: %w", err)
	}
	if err := c.client.Set(ctx, c.key(eq.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set equipment in cache: %w", err)
	}
	return nil
}

// Delete evicts equipment from the cache
func (c *RedisEquipmentCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete equipment from cache: %w", err)
	}
	return nil
}

var _ catalog.EquipmentCache = (*RedisEquipmentCache)(nil)
