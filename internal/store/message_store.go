package store

import (
	"errors"
	"sync"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

// ErrStaleSession marks a message tagged with a different stream id than the
// session it was appended to. Stale messages are dropped, not stored; callers
// log them at debug level and move on.
var ErrStaleSession = errors.New("message belongs to a different stream session")

// DefaultCapacity is the number of chat messages retained per session.
const DefaultCapacity = 200

// MessageStore is the bounded, ordered chat history of one stream session.
// Append is idempotent per dedup key, which makes at-least-once delivery
// (history replay overlapping live broadcast) safe. The store is owned by its
// session and all mutation goes through Append.
type MessageStore struct {
	mu       sync.Mutex
	streamID string
	capacity int
	messages []domain.ChatMessage
	seen     map[string]struct{}
}

// NewMessageStore creates a store bound to streamID. A capacity <= 0 falls
// back to DefaultCapacity.
func NewMessageStore(streamID string, capacity int) *MessageStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MessageStore{
		streamID: streamID,
		capacity: capacity,
		messages: make([]domain.ChatMessage, 0, capacity),
		seen:     make(map[string]struct{}, capacity),
	}
}

// Append stores the message unless its dedup key was already seen. A
// duplicate returns (false, nil): a no-op success, not an error. A message
// for another stream id returns (false, ErrStaleSession). Inserting past
// capacity evicts the oldest retained message.
func (s *MessageStore) Append(streamID string, msg domain.ChatMessage) (bool, error) {
	if streamID != s.streamID || (msg.StreamID != "" && msg.StreamID != s.streamID) {
		return false, ErrStaleSession
	}

	key := msg.DedupKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[key]; dup {
		return false, nil
	}
	s.seen[key] = struct{}{}
	s.messages = append(s.messages, msg)

	if len(s.messages) > s.capacity {
		evicted := s.messages[0]
		s.messages = s.messages[1:]
		delete(s.seen, evicted.DedupKey())
	}

	return true, nil
}

// History returns the retained messages in insertion order. The returned
// slice is a copy; callers may iterate it freely.
func (s *MessageStore) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len reports the number of retained messages.
func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// StreamID returns the stream id this store is bound to.
func (s *MessageStore) StreamID() string {
	return s.streamID
}
