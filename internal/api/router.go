package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/app"
	iauth "github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/handlers"
	"github.com/bazaarhq/bazaar/internal/middleware"
	"github.com/bazaarhq/bazaar/internal/monitoring"
	"github.com/bazaarhq/bazaar/internal/services"
)

// Dependencies bundles the collaborators the router wires into handlers.
type Dependencies struct {
	DB       *gorm.DB
	Config   *app.Config
	JWT      *iauth.JWTService
	Notifier services.VerificationNotifier
	Audit    *services.AuditService
	Health   *monitoring.HealthManager
	// RateStore backs the auth route limiter. An in-memory store is used when nil.
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers the account routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, errors.New("database handle must be provided")
	}
	if deps.Config == nil {
		return nil, errors.New("config must be provided")
	}
	if deps.JWT == nil {
		return nil, errors.New("jwt service must be provided")
	}
	if deps.Notifier == nil {
		return nil, errors.New("verification notifier must be provided")
	}

	cfg := deps.Config

	r := gin.New()

	r.Use(middleware.RequestContext())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, cfg, handlers.NewHealthHandler(deps.Health))

	accountHandler, authHandler, err := buildAccountHandlers(deps)
	if err != nil {
		return nil, err
	}

	rateStore := deps.RateStore
	if rateStore == nil {
		rateStore = middleware.NewMemoryRateStore()
	}
	registerAccountRoutes(r, accountRouteDeps{
		Accounts:  accountHandler,
		Auth:      authHandler,
		RateLimit: middleware.RateLimit(rateStore, cfg.RateLimit.Requests, cfg.RateLimit.Window),
	})

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func buildAccountHandlers(deps Dependencies) (*handlers.AccountHandler, *handlers.AuthHandler, error) {
	codeTTL := deps.Config.Auth.VerificationCodeTTL()

	registration, err := services.NewRegistrationService(deps.DB, deps.Notifier,
		services.WithRegistrationCodeTTL(codeTTL),
		services.WithRegistrationAudit(deps.Audit),
	)
	if err != nil {
		return nil, nil, err
	}

	verification, err := services.NewVerificationService(deps.DB, deps.Notifier,
		services.WithVerificationCodeTTL(codeTTL),
		services.WithVerificationAudit(deps.Audit),
	)
	if err != nil {
		return nil, nil, err
	}

	accounts, err := handlers.NewAccountHandler(registration, verification)
	if err != nil {
		return nil, nil, err
	}

	authenticator, err := iauth.NewLocalAuthenticator(deps.DB)
	if err != nil {
		return nil, nil, err
	}

	login, err := handlers.NewAuthHandler(authenticator, deps.JWT, deps.Audit)
	if err != nil {
		return nil, nil, err
	}

	return accounts, login, nil
}
