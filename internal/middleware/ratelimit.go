package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/bazaarhq/bazaar/pkg/errors"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// RateLimit limits requests per (clientIP, route) within a fixed window. A nil store
// falls back to an in-memory counter. Store failures let the request through.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	if store == nil {
		store = NewMemoryRateStore()
	}

	return func(c *gin.Context) {
		if maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := "ratelimit:" + c.ClientIP() + "|" + route

		count, resetIn, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.WithModule("ratelimit").Warn("rate limit store unavailable",
				zap.String("route", route),
				zap.Error(err),
			)
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		reset := int(math.Ceil(resetIn.Seconds()))

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > maxRequests {
			c.Header("Retry-After", strconv.Itoa(reset))
			response.Abort(c, appErrors.ErrRateLimit)
			return
		}

		c.Next()
	}
}
