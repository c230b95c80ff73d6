package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar/internal/cache"
	testutil "github.com/bazaarhq/bazaar/internal/database/testutil"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/monitoring"
	"github.com/bazaarhq/bazaar/internal/services"
)

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	auditSvc, err := services.NewAuditService(db)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, db.Create(&models.AuditLog{
		Action:    services.AuditActionRegister,
		Result:    "success",
		CreatedAt: now.AddDate(0, 0, -10),
	}).Error)
	require.NoError(t, db.Create(&models.AuditLog{
		Action: services.AuditActionVerify,
		Result: "success",
	}).Error)

	clock := now.Add(-time.Hour)
	store := cache.NewDatabaseStore(db, cache.WithClock(func() time.Time { return clock }))
	_, _, err = store.IncrementWithTTL(context.Background(), "ratelimit:stale", time.Minute)
	require.NoError(t, err)
	clock = now

	tracker := monitoring.NewJobTracker()
	c := NewCleaner(auditSvc, store,
		WithAuditRetentionDays(7),
		WithTracker(tracker),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&auditCount).Error)
	require.Equal(t, int64(1), auditCount)

	var cacheCount int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&cacheCount).Error)
	require.Zero(t, cacheCount)

	jobs := tracker.Jobs()
	require.Len(t, jobs, 2)
	for _, job := range jobs {
		require.Equal(t, "success", job.LastResult)
	}
}

type failingPruner struct{ err error }

func (f failingPruner) CleanupOlderThan(context.Context, int) (int64, error) { return 0, f.err }
func (f failingPruner) PurgeExpired(context.Context) (int64, error)          { return 0, f.err }

func TestCleanerRunOnceAggregatesErrors(t *testing.T) {
	auditErr := errors.New("audit table locked")
	cacheErr := errors.New("cache table locked")

	tracker := monitoring.NewJobTracker()
	c := NewCleaner(failingPruner{err: auditErr}, failingPruner{err: cacheErr}, WithTracker(tracker))

	err := c.RunOnce(context.Background())
	require.ErrorIs(t, err, auditErr)
	require.ErrorIs(t, err, cacheErr)

	for _, job := range tracker.Jobs() {
		require.Equal(t, uint64(1), job.ConsecutiveFailures)
	}
}

func TestCleanerStartRejectsBadSchedule(t *testing.T) {
	c := NewCleaner(failingPruner{}, nil, WithAuditSchedule("not a schedule"))
	require.Error(t, c.Start())
}

func TestCleanerStartAndStop(t *testing.T) {
	c := NewCleaner(failingPruner{}, failingPruner{}, WithAuditSchedule("@hourly"), WithCacheSchedule("@every 1h"))
	require.NoError(t, c.Start())
	<-c.Stop().Done()
}

func TestCleanerWithoutJobs(t *testing.T) {
	c := NewCleaner(nil, nil)
	require.NoError(t, c.Start())
	require.NoError(t, c.RunOnce(context.Background()))
	<-c.Stop().Done()
}
