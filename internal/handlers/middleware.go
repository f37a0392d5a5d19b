package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Correlation-ID"
	requestIDKey    = "requestId"
)

// requestIDMiddleware reuses an incoming correlation id or mints a new one
// and echoes it on the response.
func (h *Handler) requestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

// requestLogger writes one line per request. Polling routes log at debug so
// a dashboard refreshing every few seconds does not flood the output.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
		"client_ip", c.ClientIP(),
		"request_id", c.GetString(requestIDKey),
	}
	switch {
	case c.Writer.Status() >= http.StatusInternalServerError:
		h.log.Errorw("http_request", fields...)
	case c.Request.Method == http.MethodGet:
		h.log.Debugw("http_request", fields...)
	default:
		h.log.Infow("http_request", fields...)
	}
}

// recovery turns a panic in any handler into a 500 with the same body as
// other unexpected failures.
func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		err := panicError(recovered)
		h.log.Errorw("handler_panic", "err", err, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errServer, "details": err.Error()})
	})
}
