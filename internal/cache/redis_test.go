package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/ricirt/report-robot/internal/cache"
)

func newRedis(t *testing.T, lockTTL time.Duration) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{Addr: mr.Addr(), LockTTL: lockTTL})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisLocker_RenewsWhileHeld(t *testing.T) {
	const ttl = 300 * time.Millisecond
	c, mr := newRedis(t, ttl)
	ctx := context.Background()

	release, ok, err := c.TryLock(ctx, "queue", 0)
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}

	// Three steps of two thirds of the TTL each: the lease would be long
	// gone without renewals.
	for i := 0; i < 3; i++ {
		mr.FastForward(2 * ttl / 3)
		deadline := time.Now().Add(2 * time.Second)
		for mr.TTL("lock:queue") <= ttl/2 {
			if time.Now().After(deadline) {
				t.Fatalf("step %d: lease not renewed (ttl %v)", i, mr.TTL("lock:queue"))
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	if !mr.Exists("lock:queue") {
		t.Fatal("expected the lock key to survive while held")
	}
	if _, ok, _ := c.TryLock(ctx, "queue", 0); ok {
		t.Fatal("second holder must not acquire a renewed lock")
	}

	release()
	release()
	if mr.Exists("lock:queue") {
		t.Fatal("expected release to delete the lock key")
	}
	again, ok, _ := c.TryLock(ctx, "queue", 0)
	if !ok {
		t.Fatal("expected lock to be free after release")
	}
	again()
}

func TestRedisLocker_ReleaseKeepsNewHolder(t *testing.T) {
	c, mr := newRedis(t, 300*time.Millisecond)
	ctx := context.Background()

	stale, ok, _ := c.TryLock(ctx, "queue", 0)
	if !ok {
		t.Fatal("first lock failed")
	}
	// Lease lapses without a renewal landing in between.
	mr.FastForward(time.Second)

	current, ok, err := c.TryLock(ctx, "queue", 0)
	if err != nil || !ok {
		t.Fatalf("expected lock after expiry: ok=%v err=%v", ok, err)
	}

	stale()
	if !mr.Exists("lock:queue") {
		t.Fatal("a lapsed holder must not delete the new holder's lock")
	}
	current()
	if mr.Exists("lock:queue") {
		t.Fatal("expected the current holder to release its lock")
	}
}
