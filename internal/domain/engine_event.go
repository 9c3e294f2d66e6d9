package domain

import "time"

// Engine event types published for downstream consumers (persistence,
// analytics).
const (
	EventChatMessage   = "chat_message"
	EventPointsAwarded = "points_awarded"
	EventGiftSent      = "gift_sent"
	EventSessionStart  = "session_started"
	EventSessionEnd    = "session_ended"
)

// EngineEvent is the envelope written to the event stream. Exactly one of
// Message and Gift is set for their event types; the point fields accompany
// points_awarded.
type EngineEvent struct {
	Type       string       `json:"type"`
	StreamID   string       `json:"stream_id"`
	StreamerID string       `json:"streamer_id"`
	ViewerID   string       `json:"viewer_id,omitempty"`
	Points     int64        `json:"points,omitempty"`
	Balance    int64        `json:"balance,omitempty"`
	Source     string       `json:"source,omitempty"`
	Message    *ChatMessage `json:"message,omitempty"`
	Gift       *GiftEvent   `json:"gift,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
