package logsink_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ricirt/report-robot/internal/logsink"
	"github.com/ricirt/report-robot/internal/repository"
)

func TestConsole_TruncatesPastCap(t *testing.T) {
	repo := repository.NewMockConsoleRepository()
	c := logsink.NewConsole(repo, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := c.Write(ctx, "INFO", string(rune('a'+i))); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	lines := repo.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Message != "c" || lines[2].Message != "e" {
		t.Fatalf("expected the newest lines to survive, got %+v", lines)
	}

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(repo.Lines()) != 0 || repo.Resets != 1 {
		t.Fatal("expected reset to empty the table")
	}
}

func TestConsole_CoreTeesZapLines(t *testing.T) {
	repo := repository.NewMockConsoleRepository()
	c := logsink.NewConsole(repo, 100)

	logger := zap.New(c.Core(zapcore.InfoLevel)).With(zap.String("file", "ventas.xlsx"))
	logger.Debug("hidden")
	logger.Warn("tab skipped", zap.Int("tab", 3))

	lines := repo.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one line above debug, got %d", len(lines))
	}
	if lines[0].Level != "WARN" {
		t.Fatalf("expected WARN, got %s", lines[0].Level)
	}
	if lines[0].Message != "tab skipped file=ventas.xlsx tab=3" {
		t.Fatalf("unexpected message %q", lines[0].Message)
	}
}

func TestThrottle_Warn(t *testing.T) {
	ctx := context.Background()
	props := repository.NewMockPropertyStore()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	th := logsink.NewThrottle(props, zap.NewNop(), 3*time.Minute).WithClock(func() time.Time { return now })

	if !th.Warn(ctx, "lock_conflict", "busy", 0) {
		t.Fatal("first warning must be emitted")
	}
	now = now.Add(2 * time.Minute)
	if th.Warn(ctx, "lock_conflict", "busy", 0) {
		t.Fatal("warning inside the interval must be suppressed")
	}
	now = now.Add(time.Minute)
	if !th.Warn(ctx, "lock_conflict", "busy", 0) {
		t.Fatal("warning after the interval must be emitted")
	}

	t.Run("interval has a one minute floor", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		if th.Warn(ctx, "lock_conflict", "busy", time.Second) {
			t.Fatal("expected floor to suppress the warning")
		}
	})

	t.Run("clear resets the key", func(t *testing.T) {
		th.Clear(ctx, "lock_conflict")
		if !th.Warn(ctx, "lock_conflict", "busy", 0) {
			t.Fatal("expected warning after clear")
		}
		if !strings.HasPrefix(props.Keys()[0], "WARN_TS__") {
			t.Fatalf("unexpected property keys %v", props.Keys())
		}
	})

	t.Run("store failure still warns", func(t *testing.T) {
		props.GetErr = errors.New("db down")
		defer func() { props.GetErr = nil }()
		if !th.Warn(ctx, "other", "x", 0) {
			t.Fatal("expected warning when the store is unavailable")
		}
	})
}
