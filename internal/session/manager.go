package session

import (
	"context"
	"sync"
	"time"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/notify"
	"github.com/astrolive/loyalty-engine/internal/points"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

// StreamDropper removes a stream's broadcast membership from the hub once
// its session has ended.
type StreamDropper interface {
	DropStream(streamID string)
}

// EventSink receives engine events for downstream consumers. The Kafka
// producer implements it.
type EventSink interface {
	ProduceEvent(ctx context.Context, ev *domain.EngineEvent) error
}

// Config holds the manager's policy values.
type Config struct {
	HistoryCapacity int
	WatchInterval   time.Duration
}

// Manager owns every live StreamSession: lifecycle transitions, connection
// attach/detach with watch-timer scoping, and history replay on attach.
// At most one session per streamer is live at a time.
type Manager struct {
	mu         sync.Mutex
	byStream   map[string]*Session
	byStreamer map[string]*Session

	cfg        Config
	awarder    *points.Awarder
	dispatcher *notify.Dispatcher
	drop       StreamDropper
	sink       EventSink
}

// NewManager creates a Manager.
func NewManager(cfg Config, awarder *points.Awarder, dispatcher *notify.Dispatcher, drop StreamDropper, sink EventSink) *Manager {
	return &Manager{
		byStream:   make(map[string]*Session),
		byStreamer: make(map[string]*Session),
		cfg:        cfg,
		awarder:    awarder,
		dispatcher: dispatcher,
		drop:       drop,
		sink:       sink,
	}
}

// StartSession creates and activates a session for the streamer's broadcast.
// The new session is swapped into the maps under one lock acquisition, so
// concurrent starts for the same streamer leave exactly one live session; a
// displaced previous session is ended after the swap.
func (m *Manager) StartSession(ctx context.Context, streamerID, streamID string) (*Session, error) {
	l := log.Ctx(ctx)

	sess := newSession(streamerID, streamID, m.cfg.HistoryCapacity)
	sess.goLive()

	m.mu.Lock()
	prev := m.byStreamer[streamerID]
	m.byStream[streamID] = sess
	m.byStreamer[streamerID] = sess
	m.mu.Unlock()

	if prev != nil {
		l.Warn().Str(log.FieldStreamerID, streamerID).Str(log.FieldStreamID, prev.StreamID).
			Msg("ending stale session displaced by a new broadcast")
		m.endSession(ctx, prev)
	}

	l.Info().Str(log.FieldStreamerID, streamerID).Str(log.FieldStreamID, streamID).Msg("session live")
	return sess, nil
}

// EndSession ends the streamer's live session. Attached viewers get a
// session_ended event and their watch timers are cancelled.
func (m *Manager) EndSession(ctx context.Context, streamerID string) error {
	m.mu.Lock()
	sess := m.byStreamer[streamerID]
	m.mu.Unlock()

	if sess == nil {
		return ErrSessionUnavailable
	}
	m.endSession(ctx, sess)
	return nil
}

func (m *Manager) endSession(ctx context.Context, sess *Session) {
	l := log.Ctx(ctx)

	// session_ended goes through each attachment's own sender; a hub
	// broadcast would race the membership drop below.
	ended := &domain.SessionEndedMessage{
		Type:     domain.MsgTypeSessionEnded,
		StreamID: sess.StreamID,
	}
	for _, att := range sess.end() {
		if err := att.sender.SendMessage(ended); err != nil {
			l.Warn().Err(err).Str(log.FieldConnectionID, att.connID).Msg("session-ended delivery failed")
		}
	}
	m.drop.DropStream(sess.StreamID)

	m.mu.Lock()
	if m.byStream[sess.StreamID] == sess {
		delete(m.byStream, sess.StreamID)
	}
	if m.byStreamer[sess.StreamerID] == sess {
		delete(m.byStreamer, sess.StreamerID)
	}
	m.mu.Unlock()

	l.Info().Str(log.FieldStreamerID, sess.StreamerID).Str(log.FieldStreamID, sess.StreamID).Msg("session ended")
}

// Lookup returns the session for the stream id, if one exists.
func (m *Manager) Lookup(streamID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.byStream[streamID]
	return sess, ok
}

// LiveSession returns the streamer's live session, if any.
func (m *Manager) LiveSession(streamerID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.byStreamer[streamerID]
	return sess, ok
}

// Attach joins a connection to the stream's live session. On success the
// history snapshot is delivered once through the connection's sender, and an
// eligible viewer's watch-time timer starts. The timer is scoped to the
// attachment: Detach, session end and replacement all cancel it.
func (m *Manager) Attach(ctx context.Context, streamID, connID string, viewer domain.Viewer, sender Sender) (*Session, error) {
	sess, ok := m.Lookup(streamID)
	if !ok {
		return nil, ErrSessionUnavailable
	}

	// The timer's lifetime is the attachment's, not the request's.
	watchCtx, cancel := context.WithCancel(context.Background())

	if err := sess.attach(connID, viewer, sender, cancel); err != nil {
		cancel()
		return nil, err
	}

	if err := sender.SendMessage(&domain.HistoryMessage{
		Type:     domain.MsgTypeHistoryOut,
		StreamID: sess.StreamID,
		Messages: sess.History(),
	}); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldConnectionID, connID).Msg("history delivery failed")
	}

	if !viewer.Anonymous() && viewer.ID != sess.StreamerID {
		go m.runWatchTimer(watchCtx, sess, viewer)
	}

	return sess, nil
}

// Detach removes a connection from the stream's session, cancelling its
// watch timer atomically. Safe to call for unknown streams or connections.
func (m *Manager) Detach(streamID, connID string) {
	if sess, ok := m.Lookup(streamID); ok {
		sess.detach(connID)
	}
}

// runWatchTimer credits watch-time points every interval until the
// attachment is cancelled. The viewer must never be the streamer; Attach
// enforces that before starting the timer.
func (m *Manager) runWatchTimer(ctx context.Context, sess *Session, viewer domain.Viewer) {
	ticker := time.NewTicker(m.cfg.WatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			award, err := m.awarder.AwardWatchTime(ctx, viewer.ID, sess.StreamerID)
			if err != nil {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldViewerID, viewer.ID).Msg("watch-time accrual failed")
				continue
			}
			if award != nil {
				m.dispatcher.PointsUpdated(sess.StreamID, award)
				if err := m.sink.ProduceEvent(ctx, &domain.EngineEvent{
					Type:       domain.EventPointsAwarded,
					StreamID:   sess.StreamID,
					StreamerID: sess.StreamerID,
					ViewerID:   viewer.ID,
					Points:     award.Amount,
					Balance:    award.NewBalance,
					Source:     award.Source,
					OccurredAt: time.Now().UTC(),
				}); err != nil {
					l := log.L()
					l.Warn().Err(err).Msg("failed to produce watch-time event")
				}
			}
		}
	}
}
