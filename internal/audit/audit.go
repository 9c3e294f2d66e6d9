package audit

import (
	"context"

	"github.com/astrolive/loyalty-engine/pkg/log"
)

// Audit actions for the loyalty engine.
const (
	ActionAuth         = "engine.auth"
	ActionAuthFailed   = "engine.auth_failed"
	ActionJoinStream   = "engine.join_stream"
	ActionLeaveStream  = "engine.leave_stream"
	ActionSendMessage  = "engine.send_message"
	ActionSendGift     = "engine.send_gift"
	ActionLevelUp      = "engine.level_up"
	ActionSessionStart = "engine.session_start"
	ActionSessionEnd   = "engine.session_end"
	ActionDisconnect   = "engine.disconnect"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, viewerID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldViewerID, viewerID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, viewerID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldViewerID, viewerID).
		Str(FieldDetail, detail).
		Msg(msg)
}
