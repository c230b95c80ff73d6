package api

import (
	"github.com/gin-gonic/gin"

	"github.com/bazaarhq/bazaar/internal/handlers"
)

type accountRouteDeps struct {
	Accounts  *handlers.AccountHandler
	Auth      *handlers.AuthHandler
	RateLimit gin.HandlerFunc
}

func registerAccountRoutes(engine *gin.Engine, deps accountRouteDeps) {
	auth := engine.Group("/api/auth")
	if deps.RateLimit != nil {
		auth.Use(deps.RateLimit)
	}

	auth.POST("/register", deps.Accounts.Register)
	auth.POST("/verify", deps.Accounts.Verify)
	auth.POST("/verify/resend", deps.Accounts.Resend)
	auth.POST("/login", deps.Auth.Login)
}
