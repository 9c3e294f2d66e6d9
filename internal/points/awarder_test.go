package points

import (
	"context"
	"testing"
	"time"

	"github.com/astrolive/loyalty-engine/internal/config"
	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/ledger"
)

type staticLevels struct {
	levels []domain.LoyaltyLevel
}

func (s *staticLevels) Levels(_ context.Context, _ string) ([]domain.LoyaltyLevel, error) {
	return s.levels, nil
}

func testLadder() *staticLevels {
	return &staticLevels{levels: []domain.LoyaltyLevel{
		{ID: "l1", Name: "Fan", PointsRequired: 3},
		{ID: "l2", Name: "Supporter", PointsRequired: 10},
	}}
}

func testConfig() config.PointsConfig {
	return config.PointsConfig{
		ChatAmount:    1,
		WatchAmount:   10,
		WatchInterval: time.Minute,
	}
}

func newTestAwarder() (*Awarder, ledger.Ledger) {
	l := ledger.NewMemoryLedger()
	return NewAwarder(l, testLadder(), testConfig()), l
}

func TestAwardChatIncrementsBalance(t *testing.T) {
	a, _ := newTestAwarder()
	ctx := context.Background()

	award, err := a.AwardChat(ctx, "v1", "s1")
	if err != nil {
		t.Fatalf("AwardChat: %v", err)
	}
	if award == nil {
		t.Fatal("award = nil, want award")
	}
	if award.NewBalance != 1 || award.Amount != 1 {
		t.Fatalf("award = %+v, want amount 1 balance 1", award)
	}
	if award.Source != SourceChat {
		t.Fatalf("source = %q, want %q", award.Source, SourceChat)
	}
	if award.LeveledUp {
		t.Fatal("leveled up below first threshold")
	}
}

func TestLevelUpFiresOnceAtThreshold(t *testing.T) {
	a, _ := newTestAwarder()
	ctx := context.Background()

	var award *Award
	var err error
	for i := 0; i < 3; i++ {
		award, err = a.AwardChat(ctx, "v1", "s1")
		if err != nil {
			t.Fatalf("AwardChat: %v", err)
		}
	}

	// Third point crosses the first threshold.
	if !award.LeveledUp {
		t.Fatalf("award = %+v, want level-up at balance 3", award)
	}
	if award.Current == nil || award.Current.ID != "l1" {
		t.Fatalf("current = %v, want l1", award.Current)
	}
	if award.LevelNumber != 1 {
		t.Fatalf("level number = %d, want 1", award.LevelNumber)
	}

	// The next point stays within the level: no repeat notification.
	award, err = a.AwardChat(ctx, "v1", "s1")
	if err != nil {
		t.Fatalf("AwardChat: %v", err)
	}
	if award.LeveledUp {
		t.Fatal("level-up fired again without crossing a threshold")
	}
}

func TestExistingBalanceDoesNotTriggerLevelUp(t *testing.T) {
	l := ledger.NewMemoryLedger()
	ctx := context.Background()

	// The viewer already holds the first level from an earlier session.
	if _, err := l.Increment(ctx, "v1", "s1", 5); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	a := NewAwarder(l, testLadder(), testConfig())
	award, err := a.AwardChat(ctx, "v1", "s1")
	if err != nil {
		t.Fatalf("AwardChat: %v", err)
	}
	if award.LeveledUp {
		t.Fatal("level-up fired for a level already held")
	}
	if award.NewBalance != 6 {
		t.Fatalf("balance = %d, want 6", award.NewBalance)
	}
}

func TestWatchTimeCrossesMultipleThresholds(t *testing.T) {
	a, _ := newTestAwarder()
	ctx := context.Background()

	// One watch tick (10 points) jumps from level-less past both thresholds.
	award, err := a.AwardWatchTime(ctx, "v1", "s1")
	if err != nil {
		t.Fatalf("AwardWatchTime: %v", err)
	}
	if !award.LeveledUp {
		t.Fatal("no level-up crossing both thresholds")
	}
	if award.Current == nil || award.Current.ID != "l2" {
		t.Fatalf("current = %v, want l2", award.Current)
	}
}

func TestStreamerNeverAccrues(t *testing.T) {
	a, l := newTestAwarder()
	ctx := context.Background()

	award, err := a.AwardChat(ctx, "s1", "s1")
	if err != nil {
		t.Fatalf("AwardChat: %v", err)
	}
	if award != nil {
		t.Fatalf("award = %+v, want nil for the streamer", award)
	}
	if balance, _ := l.Read(ctx, "s1", "s1"); balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}

func TestAnonymousViewerNeverAccrues(t *testing.T) {
	a, _ := newTestAwarder()

	award, err := a.AwardWatchTime(context.Background(), "", "s1")
	if err != nil {
		t.Fatalf("AwardWatchTime: %v", err)
	}
	if award != nil {
		t.Fatalf("award = %+v, want nil for anonymous viewer", award)
	}
}

func TestGiftTransactionIdempotency(t *testing.T) {
	a, l := newTestAwarder()
	ctx := context.Background()

	ev := &domain.GiftEvent{
		TransactionID: "txn-1",
		SenderID:      "v1",
		StreamerID:    "s1",
		GiftID:        "g1",
		PointsAwarded: 5,
	}

	award, err := a.AwardGift(ctx, ev)
	if err != nil {
		t.Fatalf("AwardGift: %v", err)
	}
	if award == nil || award.NewBalance != 5 {
		t.Fatalf("award = %+v, want balance 5", award)
	}

	// Replay of the same transaction is a no-op.
	award, err = a.AwardGift(ctx, ev)
	if err != nil {
		t.Fatalf("replayed AwardGift: %v", err)
	}
	if award != nil {
		t.Fatalf("award = %+v for replayed transaction, want nil", award)
	}
	if balance, _ := l.Read(ctx, "v1", "s1"); balance != 5 {
		t.Fatalf("balance = %d after replay, want 5", balance)
	}
}

func TestAwardCarriesProgress(t *testing.T) {
	a, _ := newTestAwarder()

	award, err := a.AwardChat(context.Background(), "v1", "s1")
	if err != nil {
		t.Fatalf("AwardChat: %v", err)
	}
	if award.Progress.Max != 3 {
		t.Fatalf("progress = %+v, want max 3 (next threshold)", award.Progress)
	}
	if award.Next == nil || award.Next.ID != "l1" {
		t.Fatalf("next = %v, want l1", award.Next)
	}
}
