package levels

import (
	"context"
	"sync"
	"time"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

type memoryEntry struct {
	levels    []domain.LoyaltyLevel
	expiresAt time.Time
}

// MemoryLevelCache is an in-process LevelCache for single-instance
// deployments and tests.
type MemoryLevelCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryLevelCache creates an in-memory level cache.
func NewMemoryLevelCache() *MemoryLevelCache {
	return &MemoryLevelCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryLevelCache) Get(_ context.Context, streamerID string) ([]domain.LoyaltyLevel, error) {
	c.mu.RLock()
	entry, ok := c.entries[streamerID]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	out := make([]domain.LoyaltyLevel, len(entry.levels))
	copy(out, entry.levels)
	return out, nil
}

func (c *MemoryLevelCache) Set(_ context.Context, streamerID string, levels []domain.LoyaltyLevel, ttl time.Duration) error {
	stored := make([]domain.LoyaltyLevel, len(levels))
	copy(stored, levels)

	c.mu.Lock()
	c.entries[streamerID] = memoryEntry{levels: stored, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryLevelCache) Invalidate(_ context.Context, streamerID string) error {
	c.mu.Lock()
	delete(c.entries, streamerID)
	c.mu.Unlock()
	return nil
}

func (c *MemoryLevelCache) Close() error {
	return nil
}
