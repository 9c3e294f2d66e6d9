package ledger

import (
	"context"
	"errors"
)

// ErrInvalidAmount is returned for non-positive increments. A non-positive
// amount is a programming error upstream and is never silently clamped.
var ErrInvalidAmount = errors.New("point increment must be positive")

// Ledger is the authoritative store of per-viewer-per-streamer point
// balances. Increment is atomic per (viewerID, streamerID): concurrent
// increments for the same key serialize so the final balance equals the sum
// of all increments. No caller may read-modify-write a balance outside of
// Increment.
type Ledger interface {
	// Increment adds amount to the balance and returns the new balance.
	Increment(ctx context.Context, viewerID, streamerID string, amount int64) (int64, error)

	// Read returns a consistent snapshot of the balance.
	Read(ctx context.Context, viewerID, streamerID string) (int64, error)

	// ReadByViewer returns all balances held by a viewer, keyed by streamer id.
	ReadByViewer(ctx context.Context, viewerID string) (map[string]int64, error)
}
