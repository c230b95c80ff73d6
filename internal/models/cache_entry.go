package models

import (
	"time"
)

// CacheEntry backs the database cache store used for rate limit counters.
// The key column is named cache_key since KEY is reserved in MySQL.
type CacheEntry struct {
	Key       string    `gorm:"column:cache_key;primaryKey;size:256"`
	Value     []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry carries an expiry that lies before now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
