package distributor

import (
	"context"
	"strings"
	"time"

	"github.com/ricirt/report-robot/internal/cache"
)

// Dedup remembers which chats were already notified about a file.
type Dedup struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewDedup(c cache.Cache, ttl time.Duration) *Dedup {
	return &Dedup{cache: c, ttl: ttl}
}

// DedupKey keys an entry by chat and the file name stripped of every
// non-alphanumeric character, so names differing only in punctuation
// share an entry.
func DedupKey(chatID, fileName string) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, fileName)
	return "MSG_SENT_" + chatID + "_" + safe
}

func (d *Dedup) AlreadySent(ctx context.Context, chatID, fileName string) (bool, error) {
	_, ok, err := d.cache.Get(ctx, DedupKey(chatID, fileName))
	return ok, err
}

func (d *Dedup) MarkSent(ctx context.Context, chatID, fileName string) error {
	return d.cache.Set(ctx, DedupKey(chatID, fileName), "true", d.ttl)
}
