package logsink

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/repository"
)

const writeTimeout = 5 * time.Second

// Console appends leveled lines to the operator log table and keeps it
// under a fixed number of rows.
type Console struct {
	repo     repository.ConsoleRepository
	maxLines int
	now      func() time.Time

	mu sync.Mutex
}

func NewConsole(repo repository.ConsoleRepository, maxLines int) *Console {
	return &Console{repo: repo, maxLines: maxLines, now: time.Now}
}

// Write appends one line and drops the oldest rows past the cap.
func (c *Console) Write(ctx context.Context, level, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := domain.ConsoleLine{At: c.now(), Level: level, Message: msg}
	if err := c.repo.Append(ctx, line); err != nil {
		return err
	}
	if c.maxLines > 0 {
		return c.repo.Truncate(ctx, c.maxLines)
	}
	return nil
}

// Reset empties the table.
func (c *Console) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repo.Reset(ctx)
}

// Core adapts the console to zap so it can be teed with the stdout core.
func (c *Console) Core(enab zapcore.LevelEnabler) zapcore.Core {
	return &consoleCore{LevelEnabler: enab, console: c}
}

type consoleCore struct {
	zapcore.LevelEnabler
	console *Console
	fields  []zapcore.Field
}

func (cc *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *cc
	clone.fields = append(append([]zapcore.Field(nil), cc.fields...), fields...)
	return &clone
}

func (cc *consoleCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if cc.Enabled(ent.Level) {
		return ce.AddCore(ent, cc)
	}
	return ce
}

func (cc *consoleCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return cc.console.Write(ctx, ent.Level.CapitalString(), formatLine(ent.Message, cc.fields, fields))
}

func (cc *consoleCore) Sync() error { return nil }

// formatLine renders the message followed by key=value pairs in key order.
func formatLine(msg string, groups ...[]zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, fields := range groups {
		for _, f := range fields {
			f.AddTo(enc)
		}
	}
	if len(enc.Fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, enc.Fields[k])
	}
	return b.String()
}
