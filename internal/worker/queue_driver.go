package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/scheduler"
)

// Advancer is the queue step run on every tick.
type Advancer interface {
	Advance(ctx context.Context) error
}

// QueueDriver advances the job queue on a fixed interval while the
// persisted trigger is active. Start, pause and reset only flip the
// trigger, so they work from any process.
type QueueDriver struct {
	queue    Advancer
	trigger  scheduler.Trigger
	interval time.Duration
	logger   *zap.Logger
}

func NewQueueDriver(queue Advancer, trigger scheduler.Trigger, interval time.Duration, logger *zap.Logger) *QueueDriver {
	return &QueueDriver{queue: queue, trigger: trigger, interval: interval, logger: logger}
}

// Run ticks every interval until ctx is cancelled.
func (d *QueueDriver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("queue driver started", zap.Duration("interval", d.interval))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("queue driver stopping")
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *QueueDriver) tick(ctx context.Context) {
	active, err := d.trigger.Active(ctx)
	if err != nil {
		d.logger.Error("could not read queue trigger", zap.Error(err))
		return
	}
	if !active {
		return
	}
	if err := d.queue.Advance(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("queue advance failed", zap.Error(err))
	}
}
