package repository

import (
	"context"
	"time"

	"github.com/ricirt/report-robot/internal/domain"
)

// PropertyStore is a durable string key/value store. It backs the queue
// checkpoint, the trigger flag and the warning throttle.
// The pgx implementation is in pg_property_store.go.
// Tests use a hand-written mock (mock_repos.go).
type PropertyStore interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// ConsoleRepository is the append-only operator log table.
type ConsoleRepository interface {
	Append(ctx context.Context, line domain.ConsoleLine) error
	// Truncate keeps only the newest keep rows.
	Truncate(ctx context.Context, keep int) error
	Reset(ctx context.Context) error
}

// DashboardRepository records one outcome row per distributed file.
type DashboardRepository interface {
	Record(ctx context.Context, fileName string, stats domain.DistributionStats, at time.Time) error
}

// ClickRepository stores tracking rows.
type ClickRepository interface {
	Append(ctx context.Context, c *domain.Click) error
	// LatestByRecipient returns domain.ErrNotFound when the recipient has no rows.
	LatestByRecipient(ctx context.Context, recipient string) (*domain.Click, error)
	UpdateClient(ctx context.Context, id string, info domain.ClientInfo) error
}

// ControlRepository maintains the single coordination flag row.
type ControlRepository interface {
	SetBusy(ctx context.Context, total int, at time.Time) error
	SetProgress(ctx context.Context, current, total int) error
	SetFree(ctx context.Context) error
	Get(ctx context.Context) (domain.ControlState, error)
}
