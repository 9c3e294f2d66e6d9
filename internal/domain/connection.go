package domain

import (
	"sync"
	"time"
)

// ConnState is the mutable per-connection state: the resolved viewer identity
// (if any) and the stream the connection is currently attached to. It is
// read from both the read pump and broadcast paths, hence the lock.
type ConnState struct {
	ID              string
	viewer          Viewer
	authenticated   bool
	currentStreamID string
	createdAt       time.Time
	lastActiveAt    time.Time
	mu              sync.RWMutex
}

// NewConnState creates state for a freshly accepted connection.
func NewConnState(id string) *ConnState {
	now := time.Now()
	return &ConnState{
		ID:           id,
		createdAt:    now,
		lastActiveAt: now,
	}
}

// Authenticate records the resolved viewer identity.
func (s *ConnState) Authenticate(v Viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = v
	s.authenticated = true
	s.lastActiveAt = time.Now()
}

// Viewer returns the resolved identity; the zero Viewer when anonymous.
func (s *ConnState) Viewer() Viewer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer
}

// IsAuthenticated reports whether an identity has been resolved.
func (s *ConnState) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// JoinStream records the stream this connection is attached to.
func (s *ConnState) JoinStream(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStreamID = streamID
	s.lastActiveAt = time.Now()
}

// LeaveStream clears the attachment.
func (s *ConnState) LeaveStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStreamID = ""
	s.lastActiveAt = time.Now()
}

// CurrentStream returns the attached stream id, empty when detached.
func (s *ConnState) CurrentStream() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStreamID
}

// InSession reports whether the connection is attached to a stream.
func (s *ConnState) InSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStreamID != ""
}

// UpdateActivity bumps the last-active timestamp.
func (s *ConnState) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActiveAt = time.Now()
}
