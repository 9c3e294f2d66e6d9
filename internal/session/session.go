package session

import (
	"context"
	"errors"
	"sync"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/store"
)

// ErrSessionUnavailable is returned when attaching to a session that is not
// live (ended, or never existed). The client UI presents a "chat disabled"
// state; the only recovery is rejoining once the streamer goes live again.
var ErrSessionUnavailable = errors.New("stream session is not live")

// State is a StreamSession's lifecycle phase. Transitions are
// Created -> Live -> Ended; Ended is terminal.
type State int

const (
	StateCreated State = iota
	StateLive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLive:
		return "live"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Sender is one connection's outbound channel, used to deliver the history
// snapshot on attach. hub.Client satisfies it.
type Sender interface {
	SendMessage(message interface{}) error
}

// attachment is one connection's membership in a session. cancel stops the
// connection's watch-time timer; it fires on every detach path, including
// transport failure and session end.
type attachment struct {
	connID string
	viewer domain.Viewer
	sender Sender
	cancel context.CancelFunc
}

// Session is one streamer's live broadcast instance: its lifecycle state,
// its bounded message history, and the set of attached connections. All
// mutable state is guarded by the session's own lock; only session methods
// touch it.
type Session struct {
	StreamerID string
	StreamID   string

	mu    sync.Mutex
	state State
	store *store.MessageStore
	conns map[string]*attachment
}

// newSession creates a session in the Created state.
func newSession(streamerID, streamID string, capacity int) *Session {
	return &Session{
		StreamerID: streamerID,
		StreamID:   streamID,
		state:      StateCreated,
		store:      store.NewMessageStore(streamID, capacity),
		conns:      make(map[string]*attachment),
	}
}

// goLive moves Created -> Live.
func (s *Session) goLive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCreated {
		s.state = StateLive
	}
}

// end moves the session to Ended, cancels every attached connection's watch
// timer and empties the connection set. Returns the attachments that were
// present so the caller can finish cleanup.
func (s *Session) end() []*attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateEnded
	out := make([]*attachment, 0, len(s.conns))
	for _, att := range s.conns {
		att.cancel()
		out = append(out, att)
	}
	s.conns = make(map[string]*attachment)
	return out
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// attach adds a connection while Live. The cancel func is invoked on every
// detach path.
func (s *Session) attach(connID string, viewer domain.Viewer, sender Sender, cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLive {
		return ErrSessionUnavailable
	}

	// Reconnect with the same connection id replaces the old attachment.
	if prev, ok := s.conns[connID]; ok {
		prev.cancel()
	}
	s.conns[connID] = &attachment{connID: connID, viewer: viewer, sender: sender, cancel: cancel}
	return nil
}

// detach removes a connection and cancels its watch timer atomically. It is
// a no-op for unknown connection ids and never affects the session lifetime.
func (s *Session) detach(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if att, ok := s.conns[connID]; ok {
		att.cancel()
		delete(s.conns, connID)
	}
}

// Append stores a chat message through the session's deduplicating store.
func (s *Session) Append(msg domain.ChatMessage) (bool, error) {
	if s.State() != StateLive {
		return false, ErrSessionUnavailable
	}
	return s.store.Append(msg.StreamID, msg)
}

// History returns the retained message buffer in order.
func (s *Session) History() []domain.ChatMessage {
	return s.store.History()
}

// ConnectionCount reports the number of attached connections.
func (s *Session) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
