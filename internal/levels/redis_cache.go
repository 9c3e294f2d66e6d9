package levels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astrolive/loyalty-engine/internal/config"
	"github.com/astrolive/loyalty-engine/internal/domain"
)

// RedisLevelCache is a LevelCache backed by Redis, for deployments running
// more than one engine instance.
type RedisLevelCache struct {
	client *redis.Client
	prefix string
}

// NewRedisLevelCache connects to Redis and verifies the connection.
func NewRedisLevelCache(cfg config.RedisConfig, prefix string) (*RedisLevelCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLevelCache{client: client, prefix: prefix}, nil
}

func (c *RedisLevelCache) key(streamerID string) string {
	return c.prefix + ":" + streamerID
}

func (c *RedisLevelCache) Get(ctx context.Context, streamerID string) ([]domain.LoyaltyLevel, error) {
	data, err := c.client.Get(ctx, c.key(streamerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var levels []domain.LoyaltyLevel
	if err := json.Unmarshal(data, &levels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached levels: %w", err)
	}
	return levels, nil
}

func (c *RedisLevelCache) Set(ctx context.Context, streamerID string, levels []domain.LoyaltyLevel, ttl time.Duration) error {
	data, err := json.Marshal(levels)
	if err != nil {
		return fmt.Errorf("failed to marshal levels: %w", err)
	}

	if err := c.client.Set(ctx, c.key(streamerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisLevelCache) Invalidate(ctx context.Context, streamerID string) error {
	return c.client.Del(ctx, c.key(streamerID)).Err()
}

func (c *RedisLevelCache) Close() error {
	return c.client.Close()
}
