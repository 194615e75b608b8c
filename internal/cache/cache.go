package cache

import (
	"context"
	"time"
)

// Cache is a string key/value store whose entries expire.
// It backs the duplicate-suppression and per-chat rate-limit entries.
type Cache interface {
	// Get returns the value and true, or "" and false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Locker hands out a single named mutual-exclusion lock across processes.
type Locker interface {
	// TryLock waits at most wait for the lock. It returns a release func
	// and true on success, or false when the lock stayed busy.
	TryLock(ctx context.Context, name string, wait time.Duration) (release func(), ok bool, err error)
}
