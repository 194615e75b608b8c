package distributor_test

import (
	"context"
	"testing"
	"time"

	"github.com/ricirt/report-robot/internal/cache"
	"github.com/ricirt/report-robot/internal/distributor"
)

func TestDedupKey(t *testing.T) {
	got := distributor.DedupKey("12345", "Ventas 01-03 al 07-03 (final).xlsx")
	want := "MSG_SENT_12345_Ventas0103al0703finalxlsx"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDedup_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	c := cache.NewMemoryCache()
	c.SetClock(func() time.Time { return now })
	d := distributor.NewDedup(c, 6*time.Hour)

	if sent, err := d.AlreadySent(ctx, "1", "Stock.xlsx"); err != nil || sent {
		t.Fatalf("expected fresh entry, got sent=%v err=%v", sent, err)
	}
	if err := d.MarkSent(ctx, "1", "Stock.xlsx"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if sent, _ := d.AlreadySent(ctx, "1", "Stock.xlsx"); !sent {
		t.Fatal("expected duplicate within ttl")
	}
	if sent, _ := d.AlreadySent(ctx, "2", "Stock.xlsx"); sent {
		t.Fatal("other chats are independent")
	}

	now = now.Add(6*time.Hour + time.Second)
	if sent, _ := d.AlreadySent(ctx, "1", "Stock.xlsx"); sent {
		t.Fatal("expected entry to expire")
	}
}
