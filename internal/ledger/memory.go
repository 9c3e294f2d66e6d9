package ledger

import (
	"context"
	"hash/fnv"
	"sync"
)

const shardCount = 32

// MemoryLedger is an in-process Ledger. Balances are sharded by key so that
// increments for unrelated (viewer, streamer) pairs do not contend on a
// single lock.
type MemoryLedger struct {
	shards [shardCount]ledgerShard
}

type ledgerShard struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	l := &MemoryLedger{}
	for i := range l.shards {
		l.shards[i].balances = make(map[string]int64)
	}
	return l
}

func balanceKey(viewerID, streamerID string) string {
	return viewerID + ":" + streamerID
}

func (l *MemoryLedger) shardFor(key string) *ledgerShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.shards[h.Sum32()%shardCount]
}

// Increment adds amount to the balance for (viewerID, streamerID) and returns
// the new balance.
func (l *MemoryLedger) Increment(ctx context.Context, viewerID, streamerID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	key := balanceKey(viewerID, streamerID)
	shard := l.shardFor(key)

	shard.mu.Lock()
	shard.balances[key] += amount
	balance := shard.balances[key]
	shard.mu.Unlock()

	return balance, nil
}

// Read returns the current balance for (viewerID, streamerID).
func (l *MemoryLedger) Read(ctx context.Context, viewerID, streamerID string) (int64, error) {
	key := balanceKey(viewerID, streamerID)
	shard := l.shardFor(key)

	shard.mu.Lock()
	balance := shard.balances[key]
	shard.mu.Unlock()

	return balance, nil
}

// ReadByViewer returns every balance the viewer holds, keyed by streamer id.
func (l *MemoryLedger) ReadByViewer(ctx context.Context, viewerID string) (map[string]int64, error) {
	prefix := viewerID + ":"
	out := make(map[string]int64)

	for i := range l.shards {
		shard := &l.shards[i]
		shard.mu.Lock()
		for key, balance := range shard.balances {
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				out[key[len(prefix):]] = balance
			}
		}
		shard.mu.Unlock()
	}

	return out, nil
}
