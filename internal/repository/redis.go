package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lendhub/internal/config"
	"lendhub/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisSearchCache keeps item-search results in Redis. Invalidation
// bumps an epoch counter instead of scanning for keys: stale entries
// become unreachable and expire on their own.
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	return redis.NewClient(options)
}

func NewRedisSearchCache(client *redis.Client, ttl time.Duration) *RedisSearchCache {
	return &RedisSearchCache{client: client, ttl: ttl}
}

const epochKey = "item_search:epoch"

func (r *RedisSearchCache) Get(ctx context.Context, query string) ([]*models.Item, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	key, err := r.entryKey(ctx, query)
	if err != nil {
		return nil, false, err
	}

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get search entry from redis: %w", err)
	}

	var items []*models.Item
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal search entry: %w", err)
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, true, nil
}

func (r *RedisSearchCache) Set(ctx context.Context, query string, items []*models.Item) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	key, err := r.entryKey(ctx, query)
	if err != nil {
		return err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal search entry: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set search entry in redis: %w", err)
	}
	return nil
}

func (r *RedisSearchCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Incr(ctx, epochKey).Err(); err != nil {
		return fmt.Errorf("failed to bump search epoch: %w", err)
	}
	return nil
}

func (r *RedisSearchCache) entryKey(ctx context.Context, query string) (string, error) {
	epoch, err := r.client.Get(ctx, epochKey).Int64()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("failed to read search epoch: %w", err)
	}
	return fmt.Sprintf("item_search:%d:%s", epoch, query), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
