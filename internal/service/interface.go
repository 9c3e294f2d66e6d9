package service

import (
	"context"

	"github.com/astrolive/loyalty-engine/internal/hub"
	"github.com/astrolive/loyalty-engine/internal/session"
)

// EngineService handles everything a WebSocket connection can do, plus the
// session lifecycle invoked over HTTP.
type EngineService interface {
	HandleAuth(ctx context.Context, client *hub.Client, token string) error
	HandleJoin(ctx context.Context, client *hub.Client, streamID string) error
	HandleChat(ctx context.Context, client *hub.Client, text string) error
	HandleGift(ctx context.Context, client *hub.Client, giftID, streamerID string) error
	HandleHistory(ctx context.Context, client *hub.Client, streamID string) error
	HandleLeave(ctx context.Context, client *hub.Client) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error

	StartSession(ctx context.Context, streamerID string) (*session.Session, error)
	EndSession(ctx context.Context, streamerID string) error

	Stop() error
}
