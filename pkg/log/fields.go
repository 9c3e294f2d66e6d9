package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Engine entities
	FieldStreamerID   = "streamer_id"
	FieldStreamID     = "stream_id"
	FieldViewerID     = "viewer_id"
	FieldViewerName   = "viewer_name"
	FieldConnectionID = "connection_id"
	FieldMessageID    = "message_id"
	FieldGiftID       = "gift_id"
	FieldTxnID        = "txn_id"
	FieldPoints       = "points"
	FieldBalance      = "balance"
	FieldLevel        = "level"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
