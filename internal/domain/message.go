package domain

import (
	"time"
)

// ChatMessage is a single chat line in a stream session. Immutable once
// stored; insertion order is delivery order.
type ChatMessage struct {
	ID          string    `json:"id"`
	StreamID    string    `json:"stream_id"`
	StreamerID  string    `json:"streamer_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Text        string    `json:"text"`
	Level       int       `json:"level,omitempty"`
	LevelName   string    `json:"level_name,omitempty"`
	DisplayTime string    `json:"display_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// DedupKey identifies a message for idempotent storage. Priority: the
// server-assigned id, then the creation timestamp, then a composite of
// author, text and display time for messages carrying neither.
func (m *ChatMessage) DedupKey() string {
	if m.ID != "" {
		return m.ID
	}
	if !m.CreatedAt.IsZero() {
		return m.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m.AuthorID + "|" + m.Text + "|" + m.DisplayTime
}
