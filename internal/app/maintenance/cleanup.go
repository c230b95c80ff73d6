package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/bazaarhq/bazaar/internal/monitoring"
	"github.com/bazaarhq/bazaar/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultAuditSpec          = "@daily"
	defaultCacheSpec          = "@every 10m"

	jobAuditRetention = "audit_retention"
	jobCachePurge     = "cache_purge"
)

// AuditPruner deletes audit logs older than a retention window.
type AuditPruner interface {
	CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// CachePurger deletes expired cache entries.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleaner coordinates background housekeeping: audit log retention and purging
// expired rate-limit counters.
type Cleaner struct {
	audit     AuditPruner
	cache     CachePurger
	tracker   *monitoring.JobTracker
	cron      *cron.Cron
	log       *zap.Logger
	retention int

	auditSchedule string
	cacheSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache purging.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithTracker records job outcomes for health probes.
func WithTracker(tracker *monitoring.JobTracker) Option {
	return func(cleaner *Cleaner) {
		cleaner.tracker = tracker
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency skips
// the corresponding job.
func NewCleaner(audit AuditPruner, cache CachePurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		audit:         audit,
		cache:         cache,
		retention:     defaultAuditRetentionDays,
		auditSchedule: defaultAuditSpec,
		cacheSchedule: defaultCacheSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it when at least one job is enabled.
func (c *Cleaner) Start() error {
	scheduled := 0

	if c.audit != nil {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			_ = c.run(context.Background(), jobAuditRetention, c.pruneAudit)
		}); err != nil {
			return err
		}
		scheduled++
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			_ = c.run(context.Background(), jobCachePurge, c.purgeCache)
		}); err != nil {
			return err
		}
		scheduled++
	}

	if scheduled > 0 {
		c.cron.Start()
	}
	return nil
}

// Stop halts the underlying scheduler, returning a context done once running jobs complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job sequentially and aggregates their errors.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.audit != nil {
		errs = multierr.Append(errs, c.run(ctx, jobAuditRetention, c.pruneAudit))
	}
	if c.cache != nil {
		errs = multierr.Append(errs, c.run(ctx, jobCachePurge, c.purgeCache))
	}
	return errs
}

func (c *Cleaner) pruneAudit(ctx context.Context) (int64, error) {
	return c.audit.CleanupOlderThan(ctx, c.retention)
}

func (c *Cleaner) purgeCache(ctx context.Context) (int64, error) {
	return c.cache.PurgeExpired(ctx)
}

func (c *Cleaner) run(ctx context.Context, job string, fn func(context.Context) (int64, error)) error {
	start := time.Now()
	removed, err := fn(ctx)
	c.tracker.Record(job, err, time.Since(start))

	if err != nil {
		c.log.Warn("maintenance job failed", zap.String("job", job), zap.Error(err))
		return err
	}
	if removed > 0 {
		c.log.Info("maintenance job completed", zap.String("job", job), zap.Int64("removed", removed))
	}
	return nil
}
