package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, stores a request-scoped logger
// in the request context and logs one line per request.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHeader, rid)

		reqLog := log.With(logging.FieldRequestID, rid)
		c.Request = c.Request.WithContext(logging.NewContext(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			logging.FieldMethod, c.Request.Method,
			logging.FieldPath, c.Request.URL.Path,
			logging.FieldStatus, status,
			logging.FieldDuration, time.Since(start).Milliseconds(),
			logging.FieldClientIP, c.ClientIP(),
		}
		// the auth middleware replaces the context logger with one carrying user_id
		l := logging.FromContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			l.ErrorContext(c.Request.Context(), "request", attrs...)
		case status >= http.StatusBadRequest:
			l.WarnContext(c.Request.Context(), "request", attrs...)
		default:
			l.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}

// Recovery turns a panic into a logged 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				ctx := c.Request.Context()
				logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				if !c.Writer.Written() {
					util.Error(c, http.StatusInternalServerError, "Internal server error")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
