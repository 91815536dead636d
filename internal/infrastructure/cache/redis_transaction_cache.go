package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTransactionCache is an optional first tier in front of a
// TransactionReader, for deployments with more than one instance. A Redis
// outage never fails a read; the inner reader answers instead.
type RedisTransactionCache struct {
	client    *redis.Client
	inner     market.TransactionReader
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTransactionCache creates a Redis-backed transaction cache tier
func NewRedisTransactionCache(cfg RedisConfig, inner market.TransactionReader, ttl time.Duration, logger *zap.Logger) (*RedisTransactionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTransactionCacheWithClient(client, inner, ttl, logger), nil
}

// NewRedisTransactionCacheWithClient creates a cache tier with an existing
// Redis client. Useful for testing or when sharing a client.
func NewRedisTransactionCacheWithClient(client *redis.Client, inner market.TransactionReader, ttl time.Duration, logger *zap.Logger) *RedisTransactionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTransactionCache{
		client:    client,
		inner:     inner,
		ttl:       ttl,
		keyPrefix: "market:transactions:",
		logger:    logger.Named("redis-txcache"),
	}
}

// RecentByRegion serves the region's transactions from Redis, falling back
// to the inner reader and populating Redis on a miss
func (c *RedisTransactionCache) RecentByRegion(ctx context.Context, regionCode string) ([]market.TransactionRecord, error) {
	key := c.keyPrefix + regionCode

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var records []market.TransactionRecord
		if err := json.Unmarshal(payload, &records); err == nil {
			return records, nil
		}
		// Corrupt entry, drop it and fall through
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis read failed, bypassing cache tier",
			zap.String("region_code", regionCode), zap.Error(err))
	}

	records, err := c.inner.RecentByRegion(ctx, regionCode)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(records); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("redis write failed",
				zap.String("region_code", regionCode), zap.Error(err))
		}
	}

	return records, nil
}

// Invalidate drops the cached entry for a region
func (c *RedisTransactionCache) Invalidate(ctx context.Context, regionCode string) error {
	return c.client.Del(ctx, c.keyPrefix+regionCode).Err()
}

// Ensure RedisTransactionCache implements market.TransactionReader
var _ market.TransactionReader = (*RedisTransactionCache)(nil)
