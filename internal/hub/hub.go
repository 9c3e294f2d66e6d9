package hub

import (
	"encoding/json"
	"sync"

	"github.com/astrolive/loyalty-engine/internal/config"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

// Hub owns all live WebSocket clients and fans events out to the viewers of
// a stream. Delivery is best-effort: a client whose send buffer is full is
// dropped and expected to reconnect and replay history.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	streams    map[string]map[string]*Client // streamID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *streamMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

type streamMessage struct {
	StreamID string
	ViewerID string // non-empty: deliver only to this viewer's connections
	Message  []byte
	Exclude  string // client ID to exclude
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		streams:    make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *streamMessage, 256),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldConnectionID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for streamID, members := range h.streams {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.streams, streamID)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldConnectionID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.streams[msg.StreamID]; ok {
				for clientID, client := range members {
					if clientID == msg.Exclude {
						continue
					}
					if msg.ViewerID != "" && client.State.Viewer().ID != msg.ViewerID {
						continue
					}
					select {
					case client.Send <- msg.Message:
					default:
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinStream adds the client to a stream's broadcast set.
func (h *Hub) JoinStream(client *Client, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.streams[streamID]; !ok {
		h.streams[streamID] = make(map[string]*Client)
	}
	h.streams[streamID][client.ID] = client
	l := log.L()
	l.Info().Str(log.FieldConnectionID, client.ID).Str(log.FieldStreamID, streamID).Msg("client joined stream")
}

// LeaveStream removes the client from a stream's broadcast set.
func (h *Hub) LeaveStream(client *Client, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.streams[streamID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.streams, streamID)
		}
	}
	l := log.L()
	l.Info().Str(log.FieldConnectionID, client.ID).Str(log.FieldStreamID, streamID).Msg("client left stream")
}

// Broadcast delivers an event to every connection attached to the stream.
func (h *Hub) Broadcast(streamID string, message interface{}) error {
	return h.enqueue(streamID, "", message, "")
}

// SendToViewer delivers an event to all of one viewer's connections in the
// stream: level-ups go only to the leveling viewer, gift notifications to
// the streamer and the sender.
func (h *Hub) SendToViewer(streamID, viewerID string, message interface{}) error {
	return h.enqueue(streamID, viewerID, message, "")
}

func (h *Hub) enqueue(streamID, viewerID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &streamMessage{
		StreamID: streamID,
		ViewerID: viewerID,
		Message:  data,
		Exclude:  exclude,
	}
	return nil
}

// StreamClientCount reports how many connections are attached to the stream.
func (h *Hub) StreamClientCount(streamID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.streams[streamID]; ok {
		return len(members)
	}
	return 0
}

// DropStream detaches every client from the stream's broadcast set without
// closing their connections. Used when a session ends.
func (h *Hub) DropStream(streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams, streamID)
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
