package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentdesk/internal/config"
	"rentdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisAvailabilityCache stores availability results under a per-item version
// counter. Invalidate bumps the counter, so entries written before a booking
// can never be read after it.
type RedisAvailabilityCache struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisAvailabilityCache(client *redis.Client) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client}
}

func versionKey(shopID string, itemID int64) string {
	return fmt.Sprintf("avail:ver:%s:%d", shopID, itemID)
}

func (r *RedisAvailabilityCache) itemVersion(ctx context.Context, shopID string, itemID int64) (int64, error) {
	val, err := r.client.Get(ctx, versionKey(shopID, itemID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cache version: %w", err)
	}
	return val, nil
}

func resultKey(version int64, key models.AvailabilityKey) string {
	return fmt.Sprintf("avail:res:%d:%s", version, key.String())
}

func (r *RedisAvailabilityCache) Get(ctx context.Context, key models.AvailabilityKey) (*models.AvailabilityResult, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	version, err := r.itemVersion(ctx, key.ShopID, key.ItemID)
	if err != nil {
		return nil, err
	}

	val, err := r.client.Get(ctx, resultKey(version, key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability from redis: %w", err)
	}

	var result models.AvailabilityResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal availability: %w", err)
	}
	return &result, nil
}

func (r *RedisAvailabilityCache) Set(ctx context.Context, key models.AvailabilityKey, result *models.AvailabilityResult, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	version, err := r.itemVersion(ctx, key.ShopID, key.ItemID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}
	if err := r.client.Set(ctx, resultKey(version, key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set availability in redis: %w", err)
	}
	return nil
}

func (r *RedisAvailabilityCache) Invalidate(ctx context.Context, shopID string, itemID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	// Old entries keep their old version prefix and age out via TTL.
	if err := r.client.Incr(ctx, versionKey(shopID, itemID)).Err(); err != nil {
		return fmt.Errorf("failed to bump cache version: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
