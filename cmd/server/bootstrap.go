package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/api"
	"github.com/bazaarhq/bazaar/internal/app"
	"github.com/bazaarhq/bazaar/internal/app/maintenance"
	iauth "github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/cache"
	"github.com/bazaarhq/bazaar/internal/database"
	"github.com/bazaarhq/bazaar/internal/middleware"
	"github.com/bazaarhq/bazaar/internal/monitoring"
	"github.com/bazaarhq/bazaar/internal/monitoring/checks"
	"github.com/bazaarhq/bazaar/internal/services"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/mail"
)

const databaseProbeTimeout = 2 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	AuditSvc  *services.AuditService
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Health    *monitoring.HealthManager
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, services, background jobs, and the HTTP router.
func bootstrapRuntime(_ context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise smtp mailer: %w", err)
	}
	if !cfg.Email.SMTP.Enabled {
		log.Warn("smtp delivery disabled; verification codes will not be emailed")
	}

	notifier := services.NewNotificationService(mailer,
		services.WithNotificationAppName(cfg.App.Name),
		services.WithNotificationCodeTTL(cfg.Auth.VerificationCodeTTL()),
	)

	tracker := monitoring.NewJobTracker()
	stack.Health = monitoring.NewHealthManager()
	stack.Health.RegisterReadiness(checks.Database(stack.DB, databaseProbeTimeout))
	stack.Health.RegisterLiveness(checks.Maintenance(tracker, 0))

	stack.Cleaner = maintenance.NewCleaner(stack.AuditSvc, dbStore,
		maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
		maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
		maintenance.WithTracker(tracker),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.RateStore = selectRateStore(cfg.RateLimit, dbStore)

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:        stack.DB,
		Config:    cfg,
		JWT:       jwtSvc,
		Notifier:  notifier,
		Audit:     stack.AuditSvc,
		Health:    stack.Health,
		RateStore: stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// selectRateStore shares counters through the database unless the in-memory store is requested.
func selectRateStore(cfg app.RateLimitConfig, store cache.Store) middleware.RateStore {
	if strings.EqualFold(strings.TrimSpace(cfg.Store), "memory") || store == nil {
		return middleware.NewMemoryRateStore()
	}
	return middleware.NewCacheRateStore(store)
}

// Shutdown stops background jobs, runs a final cleanup pass, and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		if stopCtx := s.Cleaner.Stop(); stopCtx != nil {
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
		s.Cleaner = nil
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
		s.DB = nil
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseSettings()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndRepair(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
