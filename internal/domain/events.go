package domain

// WebSocket message types from client.
const (
	MsgTypeAuth    = "auth"
	MsgTypeJoin    = "join"
	MsgTypeLeave   = "leave"
	MsgTypeChat    = "chat"
	MsgTypeGift    = "gift"
	MsgTypeHistory = "history"
	MsgTypePing    = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeAuthResult    = "auth_result"
	MsgTypeJoined        = "joined"
	MsgTypeHistoryOut    = "history"
	MsgTypeMessage       = "message"
	MsgTypeLevelUp       = "level_up"
	MsgTypeGiftOut       = "gift"
	MsgTypePointsUpdated = "points_updated"
	MsgTypeSessionEnded  = "session_ended"
	MsgTypeError         = "error"
	MsgTypePong          = "pong"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeNotInSession       = "NOT_IN_SESSION"
	ErrCodeSessionUnavailable = "SESSION_UNAVAILABLE"
	ErrCodeInsufficientCoins  = "INSUFFICIENT_COINS"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type JoinMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
}

type ChatSendMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type GiftSendMessage struct {
	Type       string `json:"type"`
	GiftID     string `json:"gift_id"`
	StreamerID string `json:"streamer_id"`
}

type HistoryRequestMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
}

// Server -> Client messages

type AuthResultMessage struct {
	Type       string `json:"type"`
	Success    bool   `json:"success"`
	ViewerID   string `json:"viewer_id,omitempty"`
	ViewerName string `json:"viewer_name,omitempty"`
	Message    string `json:"message,omitempty"`
}

type JoinedMessage struct {
	Type       string `json:"type"`
	StreamID   string `json:"stream_id"`
	StreamerID string `json:"streamer_id"`
}

type HistoryMessage struct {
	Type     string        `json:"type"`
	StreamID string        `json:"stream_id"`
	Messages []ChatMessage `json:"messages"`
}

type ChatMessageOut struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

// LevelUpMessage is delivered only to the leveling viewer's connections.
// DisplayMs bounds how long the client shows the notification.
type LevelUpMessage struct {
	Type        string `json:"type"`
	LevelName   string `json:"level_name"`
	LevelNumber int    `json:"level_number"`
	DisplayMs   int64  `json:"display_ms"`
}

// GiftReceivedMessage goes to the streamer's connections and, as a
// confirmation, to the sender's.
type GiftReceivedMessage struct {
	Type       string `json:"type"`
	SenderName string `json:"sender_name"`
	GiftName   string `json:"gift_name"`
	DisplayMs  int64  `json:"display_ms"`
}

type PointsUpdatedMessage struct {
	Type         string        `json:"type"`
	StreamerID   string        `json:"streamer_id"`
	NewBalance   int64         `json:"new_balance"`
	PointsEarned int64         `json:"points_earned"`
	Source       string        `json:"source"`
	Progress     LevelProgress `json:"progress"`
}

type SessionEndedMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
