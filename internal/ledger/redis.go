package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astrolive/loyalty-engine/internal/config"
)

// RedisLedger stores balances in one hash per viewer
// (points:{viewerID} -> streamerID -> balance). HINCRBY gives the per-key
// atomicity the ledger contract requires.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger connects to Redis and verifies the connection.
func NewRedisLedger(cfg config.RedisConfig) (*RedisLedger, error) {
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

	return &RedisLedger{client: client}, nil
}

func viewerHashKey(viewerID string) string {
	return "points:" + viewerID
}

func (l *RedisLedger) Increment(ctx context.Context, viewerID, streamerID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := l.client.HIncrBy(ctx, viewerHashKey(viewerID), streamerID, amount).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment balance: %w", err)
	}
	return balance, nil
}

func (l *RedisLedger) Read(ctx context.Context, viewerID, streamerID string) (int64, error) {
	val, err := l.client.HGet(ctx, viewerHashKey(viewerID), streamerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt balance value %q: %w", val, err)
	}
	return balance, nil
}

func (l *RedisLedger) ReadByViewer(ctx context.Context, viewerID string) (map[string]int64, error) {
	vals, err := l.client.HGetAll(ctx, viewerHashKey(viewerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}

	out := make(map[string]int64, len(vals))
	for streamerID, val := range vals {
		balance, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt balance value %q: %w", val, err)
		}
		out[streamerID] = balance
	}
	return out, nil
}

// Close releases the Redis connection.
func (l *RedisLedger) Close() error {
	return l.client.Close()
}
