package points

import (
	"context"
	"sync"

	"github.com/astrolive/loyalty-engine/internal/config"
	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/ledger"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

// Accrual sources.
const (
	SourceChat      = "chat"
	SourceGift      = "gift"
	SourceWatchTime = "watch_time"
)

// LevelSource provides a streamer's ordered loyalty levels.
type LevelSource interface {
	Levels(ctx context.Context, streamerID string) ([]domain.LoyaltyLevel, error)
}

// Award is the outcome of one successful accrual: the confirmed balance and
// the level resolved against it, so callers always observe a causally
// consistent (balance, level) pair.
type Award struct {
	ViewerID    string
	StreamerID  string
	Amount      int64
	NewBalance  int64
	Source      string
	Current     *domain.LoyaltyLevel
	Next        *domain.LoyaltyLevel
	Progress    domain.LevelProgress
	LeveledUp   bool
	LevelNumber int // 1-based rank of Current, for display
}

// keyState serializes accrual for one (viewer, streamer) pair and remembers
// the last observed level rank for level-up detection.
type keyState struct {
	mu     sync.Mutex
	rank   int
	seeded bool
}

// Awarder routes all three accrual triggers (chat, gift, watch-time) through
// the ledger and tracks level transitions per (viewer, streamer). Triggers
// may fire concurrently for the same key; each key has a single-writer lock
// so the (balance, rank) comparison observes increments in order.
type Awarder struct {
	ledger ledger.Ledger
	levels LevelSource
	cfg    config.PointsConfig

	mu        sync.Mutex
	states    map[string]*keyState
	giftsSeen map[string]struct{} // gift transaction ids already credited
}

// NewAwarder creates an Awarder backed by the given ledger and level source.
func NewAwarder(l ledger.Ledger, levels LevelSource, cfg config.PointsConfig) *Awarder {
	return &Awarder{
		ledger:    l,
		levels:    levels,
		cfg:       cfg,
		states:    make(map[string]*keyState),
		giftsSeen: make(map[string]struct{}),
	}
}

// AwardChat credits the fixed per-message amount. Callers invoke it only for
// stored (non-duplicate) messages, which ties the award to the message dedup
// key. Returns nil for the streamer chatting in their own session.
func (a *Awarder) AwardChat(ctx context.Context, viewerID, streamerID string) (*Award, error) {
	return a.award(ctx, viewerID, streamerID, a.cfg.ChatAmount, SourceChat)
}

// AwardWatchTime credits one watch interval tick. Returns nil for the
// streamer watching their own stream.
func (a *Awarder) AwardWatchTime(ctx context.Context, viewerID, streamerID string) (*Award, error) {
	return a.award(ctx, viewerID, streamerID, a.cfg.WatchAmount, SourceWatchTime)
}

// AwardGift credits the points carried by a confirmed gift transaction,
// exactly once per transaction id. A replayed event returns (nil, nil).
func (a *Awarder) AwardGift(ctx context.Context, ev *domain.GiftEvent) (*Award, error) {
	a.mu.Lock()
	if _, dup := a.giftsSeen[ev.TransactionID]; dup {
		a.mu.Unlock()
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldTxnID, ev.TransactionID).Msg("duplicate gift transaction ignored")
		return nil, nil
	}
	a.giftsSeen[ev.TransactionID] = struct{}{}
	a.mu.Unlock()

	return a.award(ctx, ev.SenderID, ev.StreamerID, ev.PointsAwarded, SourceGift)
}

func (a *Awarder) stateFor(key string) *keyState {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.states[key]
	if !ok {
		st = &keyState{rank: -1}
		a.states[key] = st
	}
	return st
}

func (a *Awarder) award(ctx context.Context, viewerID, streamerID string, amount int64, source string) (*Award, error) {
	// Streamers never accrue points in their own session, from any trigger.
	if viewerID == "" || viewerID == streamerID {
		return nil, nil
	}

	levels, err := a.levels.Levels(ctx, streamerID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldStreamerID, streamerID).Msg("level lookup failed, resolving without levels")
		levels = nil
	}

	st := a.stateFor(viewerID + ":" + streamerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	// Seed the previous rank from the existing balance on first observation,
	// so a viewer who already holds a level does not get a level-up popup for
	// their first accrual of the session.
	if !st.seeded {
		balance, err := a.ledger.Read(ctx, viewerID, streamerID)
		if err != nil {
			return nil, err
		}
		st.rank = rankOf(levels, balance)
		st.seeded = true
	}

	newBalance, err := a.ledger.Increment(ctx, viewerID, streamerID, amount)
	if err != nil {
		return nil, err
	}

	current, next := domain.Resolve(levels, newBalance)
	newRank := -1
	if current != nil {
		newRank = domain.Rank(levels, current.ID)
	}

	award := &Award{
		ViewerID:    viewerID,
		StreamerID:  streamerID,
		Amount:      amount,
		NewBalance:  newBalance,
		Source:      source,
		Current:     current,
		Next:        next,
		Progress:    domain.ProgressFor(levels, newBalance),
		LevelNumber: newRank + 1,
	}

	if newRank > st.rank {
		award.LeveledUp = true
	}
	// A decrease (out-of-band balance correction) resynchronizes silently.
	st.rank = newRank

	return award, nil
}

// rankOf resolves the current level rank for a balance, -1 when level-less.
func rankOf(levels []domain.LoyaltyLevel, balance int64) int {
	current, _ := domain.Resolve(levels, balance)
	if current == nil {
		return -1
	}
	return domain.Rank(levels, current.ID)
}
