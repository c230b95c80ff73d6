package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/bazaarhq/bazaar/pkg/errors"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// Recovery converts panics into a 500 response and logs the error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", RequestIDFrom(c)),
					zap.Any("error", r),
				)
				// Avoid leaking internals to clients
				response.Abort(c, appErrors.ErrInternalServer)
			}
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler(c *gin.Context) {
	notFound := appErrors.ErrNotFound
	response.Error(c, appErrors.New(notFound.Code, fmt.Sprintf("route %s not found", c.Request.URL.Path), notFound.StatusCode))
}
