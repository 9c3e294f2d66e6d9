package log

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// GinMiddleware tags every HTTP request with a request id (taken from
// X-Request-ID or generated), injects a request-scoped logger into the
// request context, and emits one completion line per request. Viewer
// identity is read after the handler chain so the auth middleware has
// had a chance to set it.
func GinMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header(headerRequestID, reqID)

		reqLogger := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.Request.URL.Path).
			Str(FieldClientIP, c.ClientIP()).
			Logger()
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		evt := reqLogger.Info().
			Int(FieldStatus, c.Writer.Status()).
			Float64(FieldLatency, float64(time.Since(start).Milliseconds()))
		if viewerID, ok := c.Get(FieldViewerID); ok {
			evt = evt.Str(FieldViewerID, viewerID.(string))
		}
		if viewerName, ok := c.Get(FieldViewerName); ok {
			evt = evt.Str(FieldViewerName, viewerName.(string))
		}
		evt.Msg("request completed")
	}
}
