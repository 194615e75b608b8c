package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/repository"
	"github.com/ricirt/report-robot/internal/scheduler"
)

type countingAdvancer struct {
	calls atomic.Int32
	err   error
}

func (c *countingAdvancer) Advance(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestQueueDriver_TickHonoursTrigger(t *testing.T) {
	ctx := context.Background()
	trigger := scheduler.NewPropertyTrigger(repository.NewMockPropertyStore())
	adv := &countingAdvancer{}
	d := NewQueueDriver(adv, trigger, time.Minute, zap.NewNop())

	d.tick(ctx)
	if adv.calls.Load() != 0 {
		t.Fatal("inactive trigger must not advance the queue")
	}

	_ = trigger.Activate(ctx)
	d.tick(ctx)
	adv.err = errors.New("boom")
	d.tick(ctx)
	if adv.calls.Load() != 2 {
		t.Fatalf("expected 2 advances, got %d", adv.calls.Load())
	}
}

func TestPool_StopsOnCancel(t *testing.T) {
	trigger := scheduler.NewPropertyTrigger(repository.NewMockPropertyStore())
	_ = trigger.Activate(context.Background())
	adv := &countingAdvancer{}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(NewQueueDriver(adv, trigger, 5*time.Millisecond, zap.NewNop()))
	p.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for adv.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	done := make(chan struct{})
	go func() { p.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after cancel")
	}
	if adv.calls.Load() == 0 {
		t.Fatal("expected the driver to advance at least once")
	}
}
