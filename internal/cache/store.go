package cache

import (
	"context"
	"time"
)

// Store is the shared counter store used for request throttling.
type Store interface {
	// IncrementWithTTL bumps the counter for key inside a fixed window and returns
	// the new count with the time left until the window resets.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
