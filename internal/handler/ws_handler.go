package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/astrolive/loyalty-engine/internal/config"
	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/hub"
	"github.com/astrolive/loyalty-engine/internal/service"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub     *hub.Hub
	service service.EngineService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.EngineService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage, h.handleDisconnect)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	ctx := context.Background()
	l := log.L()

	switch base.Type {
	case domain.MsgTypeAuth:
		var msg domain.AuthMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid auth message"))
			return
		}
		if err := h.service.HandleAuth(ctx, client, msg.Token); err != nil {
			l.Debug().Err(err).Str(log.FieldConnectionID, client.ID).Msg("auth failed")
		}

	case domain.MsgTypeJoin:
		var msg domain.JoinMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join message"))
			return
		}
		if err := h.service.HandleJoin(ctx, client, msg.StreamID); err != nil {
			l.Debug().Err(err).Str(log.FieldConnectionID, client.ID).Msg("join failed")
		}

	case domain.MsgTypeChat:
		var msg domain.ChatSendMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid chat message"))
			return
		}
		if err := h.service.HandleChat(ctx, client, msg.Text); err != nil {
			l.Debug().Err(err).Str(log.FieldConnectionID, client.ID).Msg("chat failed")
		}

	case domain.MsgTypeGift:
		var msg domain.GiftSendMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid gift message"))
			return
		}
		if err := h.service.HandleGift(ctx, client, msg.GiftID, msg.StreamerID); err != nil {
			l.Debug().Err(err).Str(log.FieldConnectionID, client.ID).Msg("gift failed")
		}

	case domain.MsgTypeHistory:
		var msg domain.HistoryRequestMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid history request"))
			return
		}
		if err := h.service.HandleHistory(ctx, client, msg.StreamID); err != nil {
			l.Debug().Err(err).Str(log.FieldConnectionID, client.ID).Msg("history failed")
		}

	case domain.MsgTypeLeave:
		if err := h.service.HandleLeave(ctx, client); err != nil {
			l.Debug().Err(err).Str(log.FieldConnectionID, client.ID).Msg("leave failed")
		}

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

func (h *WSHandler) handleDisconnect(client *hub.Client) {
	if err := h.service.HandleDisconnect(context.Background(), client); err != nil {
		l := log.L()
		l.Debug().Err(err).Str(log.FieldConnectionID, client.ID).Msg("disconnect cleanup failed")
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *WSHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws", func(c *gin.Context) {
		h.HandleWebSocket(c.Writer, c.Request)
	})
}
