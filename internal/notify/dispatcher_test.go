package notify

import (
	"testing"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/points"
)

type recorder struct {
	broadcast []interface{}
	toViewer  map[string][]interface{}
}

func newRecorder() *recorder {
	return &recorder{toViewer: make(map[string][]interface{})}
}

func (r *recorder) Broadcast(_ string, message interface{}) error {
	r.broadcast = append(r.broadcast, message)
	return nil
}

func (r *recorder) SendToViewer(_ string, viewerID string, message interface{}) error {
	r.toViewer[viewerID] = append(r.toViewer[viewerID], message)
	return nil
}

func TestPointsUpdatedGoesToEarnerOnly(t *testing.T) {
	r := newRecorder()
	d := NewDispatcher(r, 5000)

	d.PointsUpdated("s1", &points.Award{
		ViewerID:   "v1",
		StreamerID: "streamer",
		Amount:     1,
		NewBalance: 4,
		Source:     points.SourceChat,
	})

	if len(r.broadcast) != 0 {
		t.Fatalf("broadcasts = %d, want 0 (points are private)", len(r.broadcast))
	}
	msgs := r.toViewer["v1"]
	if len(msgs) != 1 {
		t.Fatalf("messages to v1 = %d, want 1", len(msgs))
	}
	upd, ok := msgs[0].(*domain.PointsUpdatedMessage)
	if !ok {
		t.Fatalf("message = %#v, want points_updated", msgs[0])
	}
	if upd.NewBalance != 4 || upd.PointsEarned != 1 || upd.Source != points.SourceChat {
		t.Fatalf("payload = %+v", upd)
	}
}

func TestLevelUpNotificationCarriesDisplayWindow(t *testing.T) {
	r := newRecorder()
	d := NewDispatcher(r, 5000)

	d.PointsUpdated("s1", &points.Award{
		ViewerID:    "v1",
		StreamerID:  "streamer",
		Amount:      1,
		NewBalance:  10,
		LeveledUp:   true,
		LevelNumber: 2,
		Current:     &domain.LoyaltyLevel{ID: "l2", Name: "Supporter"},
	})

	msgs := r.toViewer["v1"]
	if len(msgs) != 2 {
		t.Fatalf("messages to v1 = %d, want points_updated + level_up", len(msgs))
	}
	lvl, ok := msgs[1].(*domain.LevelUpMessage)
	if !ok {
		t.Fatalf("second message = %#v, want level_up", msgs[1])
	}
	if lvl.LevelName != "Supporter" || lvl.LevelNumber != 2 || lvl.DisplayMs != 5000 {
		t.Fatalf("payload = %+v", lvl)
	}
}

func TestNilAwardIsIgnored(t *testing.T) {
	r := newRecorder()
	d := NewDispatcher(r, 5000)

	d.PointsUpdated("s1", nil)
	if len(r.toViewer) != 0 || len(r.broadcast) != 0 {
		t.Fatal("nil award produced notifications")
	}
}

func TestGiftReceivedNotifiesStreamerAndSender(t *testing.T) {
	r := newRecorder()
	d := NewDispatcher(r, 5000)

	d.GiftReceived("s1", &domain.GiftEvent{
		TransactionID: "txn-1",
		SenderID:      "v1",
		SenderName:    "Ana",
		StreamerID:    "streamer",
		GiftName:      "Rocket",
	})

	for _, id := range []string{"streamer", "v1"} {
		msgs := r.toViewer[id]
		if len(msgs) != 1 {
			t.Fatalf("messages to %s = %d, want 1", id, len(msgs))
		}
		g, ok := msgs[0].(*domain.GiftReceivedMessage)
		if !ok {
			t.Fatalf("message to %s = %#v, want gift", id, msgs[0])
		}
		if g.SenderName != "Ana" || g.GiftName != "Rocket" || g.DisplayMs != 5000 {
			t.Fatalf("payload to %s = %+v", id, g)
		}
	}
}
