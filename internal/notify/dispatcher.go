package notify

import (
	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/points"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

// Broadcaster is the delivery surface the dispatcher pushes through. The
// WebSocket hub implements it; tests substitute a recorder.
type Broadcaster interface {
	// Broadcast delivers to every connection attached to the stream.
	Broadcast(streamID string, message interface{}) error
	// SendToViewer delivers to all of one viewer's connections in the stream.
	SendToViewer(streamID, viewerID string, message interface{}) error
}

// Dispatcher is a stateless relay turning award outcomes and gift events
// into one-shot client notifications. Delivery is fire-and-forget: a viewer
// who is offline simply misses the notification.
type Dispatcher struct {
	b         Broadcaster
	displayMs int64
}

// NewDispatcher creates a Dispatcher. displayMs bounds how long clients show
// each notification.
func NewDispatcher(b Broadcaster, displayMs int64) *Dispatcher {
	return &Dispatcher{b: b, displayMs: displayMs}
}

// PointsUpdated pushes the confirmed balance to the earning viewer's own
// connections, and a level-up notification when the award crossed a level
// threshold upward.
func (d *Dispatcher) PointsUpdated(streamID string, award *points.Award) {
	if award == nil {
		return
	}

	msg := &domain.PointsUpdatedMessage{
		Type:         domain.MsgTypePointsUpdated,
		StreamerID:   award.StreamerID,
		NewBalance:   award.NewBalance,
		PointsEarned: award.Amount,
		Source:       award.Source,
		Progress:     award.Progress,
	}
	if err := d.b.SendToViewer(streamID, award.ViewerID, msg); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldViewerID, award.ViewerID).Msg("points update delivery failed")
	}

	if award.LeveledUp && award.Current != nil {
		d.levelUp(streamID, award)
	}
}

func (d *Dispatcher) levelUp(streamID string, award *points.Award) {
	msg := &domain.LevelUpMessage{
		Type:        domain.MsgTypeLevelUp,
		LevelName:   award.Current.Name,
		LevelNumber: award.LevelNumber,
		DisplayMs:   d.displayMs,
	}
	if err := d.b.SendToViewer(streamID, award.ViewerID, msg); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldViewerID, award.ViewerID).Msg("level-up delivery failed")
	}
}

// GiftReceived notifies the streamer's connections of a confirmed gift, and
// the sender's as a confirmation.
func (d *Dispatcher) GiftReceived(streamID string, ev *domain.GiftEvent) {
	msg := &domain.GiftReceivedMessage{
		Type:       domain.MsgTypeGiftOut,
		SenderName: ev.SenderName,
		GiftName:   ev.GiftName,
		DisplayMs:  d.displayMs,
	}

	l := log.L()
	if err := d.b.SendToViewer(streamID, ev.StreamerID, msg); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamerID, ev.StreamerID).Msg("gift notification delivery failed")
	}
	if ev.SenderID != "" && ev.SenderID != ev.StreamerID {
		if err := d.b.SendToViewer(streamID, ev.SenderID, msg); err != nil {
			l.Warn().Err(err).Str(log.FieldViewerID, ev.SenderID).Msg("gift confirmation delivery failed")
		}
	}
}
