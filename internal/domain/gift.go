package domain

import "time"

// Gift is a streamer-configured catalog entry: what it costs the sender in
// coins and how many loyalty points it awards them.
type Gift struct {
	ID            string `json:"id"`
	StreamerID    string `json:"streamer_id"`
	Name          string `json:"name"`
	CoinCost      int64  `json:"coin_cost"`
	PointsAwarded int64  `json:"points_awarded"`
}

// GiftEvent is the post-debit confirmation from the coin service. It is
// ephemeral: consumed by the awarder and the notification fan-out, never
// persisted by this engine. TransactionID is the idempotency key: a replayed
// event must not award points twice.
type GiftEvent struct {
	TransactionID string    `json:"transaction_id"`
	SenderID      string    `json:"sender_id"`
	SenderName    string    `json:"sender_name"`
	StreamerID    string    `json:"streamer_id"`
	GiftID        string    `json:"gift_id"`
	GiftName      string    `json:"gift_name"`
	CoinCost      int64     `json:"coin_cost"`
	PointsAwarded int64     `json:"points_awarded"`
	OccurredAt    time.Time `json:"occurred_at"`
}
