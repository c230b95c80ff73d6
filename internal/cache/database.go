package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bazaarhq/bazaar/internal/models"
)

// DatabaseStore implements Store using the primary SQL database.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Option customises a DatabaseStore.
type Option func(*DatabaseStore)

// WithClock injects a custom time source.
func WithClock(clock func() time.Time) Option {
	return func(s *DatabaseStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB, opts ...Option) *DatabaseStore {
	if db == nil {
		return nil
	}
	store := &DatabaseStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// IncrementWithTTL atomically increments a counter for the supplied key. The window
// starts on the first increment and is not extended by later ones.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if window <= 0 {
		window = time.Minute
	}

	now := s.now()

	var (
		count  int64
		expiry time.Time
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Seed a zero counter; a concurrent first hit leaves the existing row alone.
		seed := models.CacheEntry{Key: key, Value: []byte("0"), ExpiresAt: now.Add(window)}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		var entry models.CacheEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&entry, "cache_key = ?", key).Error; err != nil {
			return err
		}

		if entry.Expired(now) {
			count = 1
			expiry = now.Add(window)
		} else {
			current, _ := strconv.ParseInt(string(entry.Value), 10, 64)
			count = current + 1
			expiry = entry.ExpiresAt
		}

		return tx.Model(&models.CacheEntry{}).
			Where("cache_key = ?", key).
			Updates(map[string]any{
				"value":      []byte(strconv.FormatInt(count, 10)),
				"expires_at": expiry,
			}).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return count, expiry.Sub(now), nil
}

// PurgeExpired deletes entries whose window has elapsed.
func (s *DatabaseStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}
