package logsink

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/repository"
)

const (
	warnKeyPrefix = "WARN_TS__"
	minWarnFloor  = time.Minute
)

// Throttle emits a warning at most once per interval for a given key.
// The last emission time is persisted so the limit holds across runs.
type Throttle struct {
	props    repository.PropertyStore
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

func NewThrottle(props repository.PropertyStore, logger *zap.Logger, defaultInterval time.Duration) *Throttle {
	return &Throttle{props: props, logger: logger, interval: defaultInterval, now: time.Now}
}

// WithClock overrides the time source.
func (t *Throttle) WithClock(now func() time.Time) *Throttle {
	t.now = now
	return t
}

// Warn logs msg unless the same key warned less than minInterval ago.
// A zero minInterval uses the default; anything under a minute is raised
// to a minute. It reports whether the warning was emitted.
func (t *Throttle) Warn(ctx context.Context, key, msg string, minInterval time.Duration) bool {
	if minInterval <= 0 {
		minInterval = t.interval
	}
	if minInterval < minWarnFloor {
		minInterval = minWarnFloor
	}

	now := t.now()
	prop := warnKeyPrefix + key
	if raw, ok, err := t.props.Get(ctx, prop); err == nil && ok {
		if last, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			if now.Sub(time.UnixMilli(last)) < minInterval {
				return false
			}
		}
	}

	t.logger.Warn(msg, zap.String("throttle_key", key))
	if err := t.props.Set(ctx, prop, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		t.logger.Debug("could not store warning timestamp", zap.String("throttle_key", key), zap.Error(err))
	}
	return true
}

// Clear forgets the last emission for key.
func (t *Throttle) Clear(ctx context.Context, key string) {
	if err := t.props.Delete(ctx, warnKeyPrefix+key); err != nil {
		t.logger.Debug("could not clear warning timestamp", zap.String("throttle_key", key), zap.Error(err))
	}
}
