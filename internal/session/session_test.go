package session

import (
	"errors"
	"testing"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

type fakeSender struct {
	sent []interface{}
}

func (f *fakeSender) SendMessage(message interface{}) error {
	f.sent = append(f.sent, message)
	return nil
}

func TestAttachBeforeLive(t *testing.T) {
	sess := newSession("streamer", "s1", 10)

	err := sess.attach("c1", domain.Viewer{ID: "v1"}, &fakeSender{}, func() {})
	if !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("err = %v, want ErrSessionUnavailable", err)
	}
}

func TestAttachAfterEnd(t *testing.T) {
	sess := newSession("streamer", "s1", 10)
	sess.goLive()
	sess.end()

	err := sess.attach("c1", domain.Viewer{ID: "v1"}, &fakeSender{}, func() {})
	if !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("err = %v, want ErrSessionUnavailable", err)
	}
	if sess.State() != StateEnded {
		t.Fatalf("state = %v, want ended", sess.State())
	}
}

func TestAppendRequiresLive(t *testing.T) {
	sess := newSession("streamer", "s1", 10)

	if _, err := sess.Append(domain.ChatMessage{ID: "m1", StreamID: "s1"}); !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("err = %v before live, want ErrSessionUnavailable", err)
	}

	sess.goLive()
	stored, err := sess.Append(domain.ChatMessage{ID: "m1", StreamID: "s1"})
	if err != nil || !stored {
		t.Fatalf("Append while live = (%v, %v), want (true, nil)", stored, err)
	}

	sess.end()
	if _, err := sess.Append(domain.ChatMessage{ID: "m2", StreamID: "s1"}); !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("err = %v after end, want ErrSessionUnavailable", err)
	}
}

func TestEndCancelsAttachments(t *testing.T) {
	sess := newSession("streamer", "s1", 10)
	sess.goLive()

	cancelled := make(map[string]bool)
	for _, id := range []string{"c1", "c2"} {
		connID := id
		if err := sess.attach(connID, domain.Viewer{ID: "v-" + connID}, &fakeSender{}, func() {
			cancelled[connID] = true
		}); err != nil {
			t.Fatalf("attach %s: %v", connID, err)
		}
	}

	sess.end()
	if !cancelled["c1"] || !cancelled["c2"] {
		t.Fatalf("cancelled = %v, want both attachments cancelled", cancelled)
	}
	if sess.ConnectionCount() != 0 {
		t.Fatalf("ConnectionCount() = %d after end, want 0", sess.ConnectionCount())
	}
}

func TestReattachSameConnectionCancelsPrevious(t *testing.T) {
	sess := newSession("streamer", "s1", 10)
	sess.goLive()

	firstCancelled := false
	if err := sess.attach("c1", domain.Viewer{ID: "v1"}, &fakeSender{}, func() { firstCancelled = true }); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := sess.attach("c1", domain.Viewer{ID: "v1"}, &fakeSender{}, func() {}); err != nil {
		t.Fatalf("re-attach: %v", err)
	}

	if !firstCancelled {
		t.Fatal("previous attachment's cancel was not invoked on re-attach")
	}
	if sess.ConnectionCount() != 1 {
		t.Fatalf("ConnectionCount() = %d, want 1", sess.ConnectionCount())
	}
}

func TestDetachCancels(t *testing.T) {
	sess := newSession("streamer", "s1", 10)
	sess.goLive()

	cancelled := false
	if err := sess.attach("c1", domain.Viewer{ID: "v1"}, &fakeSender{}, func() { cancelled = true }); err != nil {
		t.Fatalf("attach: %v", err)
	}

	sess.detach("c1")
	if !cancelled {
		t.Fatal("detach did not cancel the attachment")
	}

	// Detaching an unknown connection is a no-op.
	sess.detach("unknown")
}
