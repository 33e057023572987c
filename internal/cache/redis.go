package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nhle/todocal/internal/model"
)

const keyPrefix = "todocal"

// RedisCache keeps entries in Redis under todocal:<user>:... keys.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client. A non-positive ttl keeps
// entries until they are invalidated.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Connect dials Redis from cfg and pings it. Callers fall back to Nop
// when this fails.
func Connect(ctx context.Context, cfg model.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisCache(client, cfg.TTL), nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func countsKey(userID string, start, end model.Date) string {
	return fmt.Sprintf("%s:%s:calendar:%s:%s", keyPrefix, userID, start, end)
}

func (c *RedisCache) GetCounts(
	ctx context.Context,
	userID string,
	start, end model.Date,
) (map[model.Date]int, bool, error) {
	raw, err := c.client.Get(ctx, countsKey(userID, start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading calendar counts: %w", err)
	}

	var counts map[model.Date]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false, fmt.Errorf("decoding calendar counts: %w", err)
	}
	return counts, true, nil
}

func (c *RedisCache) SetCounts(
	ctx context.Context,
	userID string,
	start, end model.Date,
	counts map[model.Date]int,
) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encoding calendar counts: %w", err)
	}
	if err := c.client.Set(ctx, countsKey(userID, start, end), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing calendar counts: %w", err)
	}
	return nil
}

// InvalidateUser scans for the user's keys and deletes them in batches.
func (c *RedisCache) InvalidateUser(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, userID)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scanning cache keys for user %s: %w", userID, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("deleting cache keys for user %s: %w", userID, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
