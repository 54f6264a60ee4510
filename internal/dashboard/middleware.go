package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	sessionCookie   = "agridash_session"

	ctxRequestID = "request_id"
	ctxSessionID = "session_id"
)

// requestLogger tags every request with a request ID and a session ID
// (kept in a cookie) and logs it when the handler returns.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ctxRequestID, reqID)
		c.Header(headerRequestID, reqID)

		session, err := c.Cookie(sessionCookie)
		if err != nil || uuid.Validate(session) != nil {
			session = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, session, 0, "/", "", false, true)
		}
		c.Set(ctxSessionID, session)

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", reqID,
			"session_id", session,
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", append(attrs, "errors", c.Errors.String())...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}

// recovery turns a handler panic into a 500 envelope.
func recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error("panic serving request", "path", c.Request.URL.Path, "error", err, "request_id", c.GetString(ctxRequestID))
		c.AbortWithStatusJSON(http.StatusInternalServerError, createErrorResponse("INTERNAL", "internal server error"))
	})
}
