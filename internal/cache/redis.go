package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// LockTTL bounds how long a crashed holder can keep the lock.
	LockTTL time.Duration
}

// RedisCache implements Cache and Locker on a single Redis client.
type RedisCache struct {
	client  *redis.Client
	lockTTL time.Duration
	poll    time.Duration
}

func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{client: client, lockTTL: cfg.LockTTL, poll: 250 * time.Millisecond}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// releaseScript deletes the lock only if it still carries our token, so a
// holder whose TTL lapsed cannot release somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// renewScript extends the lease only while the lock still carries our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// TryLock takes lock:<name>. While held, the lease is renewed every third
// of the TTL so a long job cannot outlive it; release stops the renewal
// and deletes the key.
func (c *RedisCache) TryLock(ctx context.Context, name string, wait time.Duration) (func(), bool, error) {
	key := "lock:" + name
	token := uuid.New().String()
	deadline := time.Now().Add(wait)

	for {
		ok, err := c.client.SetNX(ctx, key, token, c.lockTTL).Result()
		if err != nil {
			return nil, false, fmt.Errorf("acquire lock %s: %w", name, err)
		}
		if ok {
			return c.holdLock(key, token), true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(c.poll):
		}
	}
}

// holdLock starts the lease renewal and returns the idempotent release.
func (c *RedisCache) holdLock(key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go c.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// Background context: release must run even after ctx is cancelled.
			_ = releaseScript.Run(context.Background(), c.client, []string{key}, token).Err()
		})
	}
}

func (c *RedisCache) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := c.lockTTL / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := renewScript.Run(ctx, c.client, []string{key}, token, c.lockTTL.Milliseconds()).Int()
			cancel()
			if err == nil && n == 0 {
				// Lost to expiry or another holder; nothing left to renew.
				return
			}
		}
	}
}

var (
	_ Cache  = (*RedisCache)(nil)
	_ Locker = (*RedisCache)(nil)
)
