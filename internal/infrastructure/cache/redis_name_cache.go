package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisNameCache implements NameCache on a shared Redis instance so
// every API replica sees the same product names.
type RedisNameCache struct {
	client     *redis.Client
	ownsClient bool
}

// NewRedisNameCache creates a cache with its own Redis client and
// verifies connectivity before returning.
func NewRedisNameCache(addr, password string, db int) (*RedisNameCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisNameCache{client: client, ownsClient: true}, nil
}

// NewRedisNameCacheWithClient wraps an existing client. The caller
// retains ownership and is responsible for closing it.
func NewRedisNameCacheWithClient(client *redis.Client) *RedisNameCache {
	return &RedisNameCache{client: client}
}

func nameKey(productID uuid.UUID) string {
	return "product_name:" + productID.String()
}

// Get retrieves a cached product name
func (c *RedisNameCache) Get(ctx context.Context, productID uuid.UUID) (string, bool, error) {
	name, err := c.client.Get(ctx, nameKey(productID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return name, true, nil
}

// Set stores a product name with the given TTL
func (c *RedisNameCache) Set(ctx context.Context, productID uuid.UUID, name string, ttl time.Duration) error {
	if err := c.client.Set(ctx, nameKey(productID), name, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the client if this cache owns it
func (c *RedisNameCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ NameCache = (*RedisNameCache)(nil)
