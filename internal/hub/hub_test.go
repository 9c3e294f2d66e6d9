package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/astrolive/loyalty-engine/internal/config"
	"github.com/astrolive/loyalty-engine/internal/domain"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}
}

func newTestHub() *Hub {
	h := NewHub(testWSConfig())
	go h.Run()
	return h
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesStreamMembers(t *testing.T) {
	h := newTestHub()

	a := NewClient("a", h, nil, testWSConfig())
	b := NewClient("b", h, nil, testWSConfig())
	other := NewClient("other", h, nil, testWSConfig())
	for _, c := range []*Client{a, b, other} {
		h.Register(c)
	}

	h.JoinStream(a, "s1")
	h.JoinStream(b, "s1")
	h.JoinStream(other, "s2")

	if err := h.Broadcast("s1", map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	for _, c := range []*Client{a, b} {
		var payload map[string]string
		if err := json.Unmarshal(recv(t, c), &payload); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if payload["type"] != "ping" {
			t.Fatalf("payload = %v", payload)
		}
	}
	expectSilence(t, other)
}

func TestSendToViewerTargetsAllTheirConnections(t *testing.T) {
	h := newTestHub()

	first := NewClient("c1", h, nil, testWSConfig())
	second := NewClient("c2", h, nil, testWSConfig())
	bystander := NewClient("c3", h, nil, testWSConfig())
	for _, c := range []*Client{first, second, bystander} {
		h.Register(c)
		h.JoinStream(c, "s1")
	}
	first.State.Authenticate(domain.Viewer{ID: "v1"})
	second.State.Authenticate(domain.Viewer{ID: "v1"})
	bystander.State.Authenticate(domain.Viewer{ID: "v2"})

	if err := h.SendToViewer("s1", "v1", map[string]string{"type": "points_updated"}); err != nil {
		t.Fatalf("SendToViewer: %v", err)
	}

	recv(t, first)
	recv(t, second)
	expectSilence(t, bystander)
}

func TestDropStreamStopsDelivery(t *testing.T) {
	h := newTestHub()

	c := NewClient("c1", h, nil, testWSConfig())
	h.Register(c)
	h.JoinStream(c, "s1")

	h.DropStream("s1")
	if got := h.StreamClientCount("s1"); got != 0 {
		t.Fatalf("StreamClientCount = %d after drop, want 0", got)
	}

	if err := h.Broadcast("s1", map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	expectSilence(t, c)
}

func TestLeaveStream(t *testing.T) {
	h := newTestHub()

	c := NewClient("c1", h, nil, testWSConfig())
	h.Register(c)
	h.JoinStream(c, "s1")
	h.LeaveStream(c, "s1")

	if err := h.Broadcast("s1", map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	expectSilence(t, c)
}
