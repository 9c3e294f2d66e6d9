package levels

import (
	"context"
	"errors"
	"time"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// LevelCache stores resolved loyalty ladders keyed by streamer id.
type LevelCache interface {
	Get(ctx context.Context, streamerID string) ([]domain.LoyaltyLevel, error)
	Set(ctx context.Context, streamerID string, levels []domain.LoyaltyLevel, ttl time.Duration) error
	Invalidate(ctx context.Context, streamerID string) error
	Close() error
}
