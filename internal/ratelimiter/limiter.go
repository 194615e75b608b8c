package ratelimiter

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ricirt/report-robot/internal/cache"
)

// lastSendTTL only needs to outlive the minimum interval.
const lastSendTTL = 10 * time.Second

// ChatThrottle spaces out Telegram messages two ways: a global token bucket
// across all chats, and a minimum interval per chat id whose last-send
// timestamp lives in a short-lived cache entry so it is shared between
// processes.
type ChatThrottle struct {
	global      *rate.Limiter
	cache       cache.Cache
	minInterval time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a ChatThrottle allowing perSecond messages per second overall.
// Burst equals the rate, so no extra burst is saved up beyond the limit.
func New(c cache.Cache, minInterval time.Duration, perSecond int) *ChatThrottle {
	if perSecond <= 0 {
		perSecond = 20
	}
	return &ChatThrottle{
		global:      rate.NewLimiter(rate.Limit(perSecond), perSecond),
		cache:       c,
		minInterval: minInterval,
		now:         time.Now,
		sleep:       Sleep,
	}
}

// WithClock swaps the time source and sleeper. Tests use it to observe
// the delays without waiting for them.
func (t *ChatThrottle) WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) *ChatThrottle {
	t.now = now
	t.sleep = sleep
	return t
}

// Wait blocks until a message to chatID may be sent.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (t *ChatThrottle) Wait(ctx context.Context, chatID string) error {
	if err := t.global.Wait(ctx); err != nil {
		return err
	}

	key := "TELEGRAM_LAST_SEND_" + chatID
	if raw, ok, err := t.cache.Get(ctx, key); err == nil && ok {
		if last, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			elapsed := t.now().Sub(time.UnixMilli(last))
			if elapsed < t.minInterval {
				if err := t.sleep(ctx, t.minInterval-elapsed); err != nil {
					return err
				}
			}
		}
	}

	// A cache failure only loses spacing for the next message.
	_ = t.cache.Set(ctx, key, strconv.FormatInt(t.now().UnixMilli(), 10), lastSendTTL)
	return nil
}

// Sleep pauses for d or until ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
