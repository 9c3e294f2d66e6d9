package levels

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/repository"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

// Provider serves loyalty ladders with a read-through cache. Concurrent
// misses for the same streamer collapse into one repository read.
type Provider struct {
	repo     repository.LevelRepository
	cache    LevelCache
	cacheTTL time.Duration
	sf       singleflight.Group
}

// NewProvider creates a cached level provider.
func NewProvider(repo repository.LevelRepository, cache LevelCache, cacheTTL time.Duration) *Provider {
	return &Provider{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Levels returns the streamer's ladder sorted ascending by threshold.
func (p *Provider) Levels(ctx context.Context, streamerID string) ([]domain.LoyaltyLevel, error) {
	result, err, _ := p.sf.Do(streamerID, func() (interface{}, error) {
		return p.fetchWithCache(ctx, streamerID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LoyaltyLevel), nil
}

// Invalidate drops the cached ladder so the next read sees fresh data. Call
// it after every ladder write.
func (p *Provider) Invalidate(ctx context.Context, streamerID string) {
	if err := p.cache.Invalidate(ctx, streamerID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldStreamerID, streamerID).Msg("level cache invalidate error")
	}
}

func (p *Provider) fetchWithCache(ctx context.Context, streamerID string) ([]domain.LoyaltyLevel, error) {
	cached, err := p.cache.Get(ctx, streamerID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("level cache get error")
	}

	levels, err := p.repo.GetLevels(ctx, streamerID)
	if err != nil {
		return nil, err
	}
	domain.SortLevels(levels)

	// Store in cache without blocking the caller.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.cache.Set(cacheCtx, streamerID, levels, p.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("level cache set error")
		}
	}()

	return levels, nil
}
