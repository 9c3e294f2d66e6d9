package levels

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

type countingRepo struct {
	calls  int32
	levels []domain.LoyaltyLevel
}

func (r *countingRepo) GetLevels(_ context.Context, _ string) ([]domain.LoyaltyLevel, error) {
	atomic.AddInt32(&r.calls, 1)
	out := make([]domain.LoyaltyLevel, len(r.levels))
	copy(out, r.levels)
	return out, nil
}

func (r *countingRepo) ReplaceLevels(_ context.Context, _ string, levels []domain.LoyaltyLevel) ([]domain.LoyaltyLevel, error) {
	r.levels = levels
	return levels, nil
}

func TestLevelsReturnsSorted(t *testing.T) {
	repo := &countingRepo{levels: []domain.LoyaltyLevel{
		{ID: "l2", PointsRequired: 50},
		{ID: "l1", PointsRequired: 10},
	}}
	p := NewProvider(repo, NewMemoryLevelCache(), time.Minute)

	levels, err := p.Levels(context.Background(), "streamer")
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	if len(levels) != 2 || levels[0].ID != "l1" {
		t.Fatalf("levels = %+v, want sorted by threshold", levels)
	}
}

func TestLevelsHitsCacheOnSecondRead(t *testing.T) {
	repo := &countingRepo{levels: []domain.LoyaltyLevel{{ID: "l1", PointsRequired: 10}}}
	p := NewProvider(repo, NewMemoryLevelCache(), time.Minute)
	ctx := context.Background()

	if _, err := p.Levels(ctx, "streamer"); err != nil {
		t.Fatalf("Levels: %v", err)
	}
	// The cache write is asynchronous; give it a moment to land.
	time.Sleep(50 * time.Millisecond)

	if _, err := p.Levels(ctx, "streamer"); err != nil {
		t.Fatalf("second Levels: %v", err)
	}
	if got := atomic.LoadInt32(&repo.calls); got != 1 {
		t.Fatalf("repository reads = %d, want 1", got)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &countingRepo{levels: []domain.LoyaltyLevel{{ID: "l1", PointsRequired: 10}}}
	p := NewProvider(repo, NewMemoryLevelCache(), time.Minute)
	ctx := context.Background()

	if _, err := p.Levels(ctx, "streamer"); err != nil {
		t.Fatalf("Levels: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	p.Invalidate(ctx, "streamer")
	if _, err := p.Levels(ctx, "streamer"); err != nil {
		t.Fatalf("Levels after invalidate: %v", err)
	}
	if got := atomic.LoadInt32(&repo.calls); got != 2 {
		t.Fatalf("repository reads = %d, want 2 after invalidate", got)
	}
}

func TestMemoryCacheTTL(t *testing.T) {
	c := NewMemoryLevelCache()
	ctx := context.Background()

	if err := c.Set(ctx, "streamer", []domain.LoyaltyLevel{{ID: "l1"}}, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.Get(ctx, "streamer"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(ctx, "streamer"); err != ErrCacheMiss {
		t.Fatalf("err = %v after expiry, want ErrCacheMiss", err)
	}
}
