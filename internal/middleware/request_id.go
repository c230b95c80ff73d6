package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/auditctx"
)

const (
	// RequestIDHeader carries the request correlation id.
	RequestIDHeader = "X-Request-ID"

	ctxRequestIDKey = "request_id"
)

// RequestContext assigns a request id (honouring a sane inbound header) and attaches
// the client actor to the request context for audit logging.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Set(ctxRequestIDKey, id)
		c.Header(RequestIDHeader, id)

		ctx := auditctx.WithActor(c.Request.Context(), auditctx.Actor{
			RequestID: id,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestContext, if any.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestIDKey)
}
