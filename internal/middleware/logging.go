package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/ctxutil"
)

// Trace assigns every request a trace id, reusing one supplied by an
// upstream proxy via X-Request-Id.
func (m *Middleware) Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if id := c.GetHeader("X-Request-Id"); id != "" {
			ctx = ctxutil.WithTraceID(ctx, id)
		}
		ctx, id := ctxutil.EnsureTraceID(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// RequestLog logs one line per request with method, path, status, and
// latency.
func (m *Middleware) RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Recovery converts panics into a 500 response without killing the worker.
func (m *Middleware) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		m.logger.Error(c.Request.Context(), "panic recovered", "panic", recovered)
		c.AbortWithStatusJSON(500, gin.H{"message": "internal error"})
	})
}
