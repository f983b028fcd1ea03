// Package dedup remembers which message ids scheduled triage runs have
// already decided, so overlapping source reads do not produce duplicate
// decisions.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/customeros/mailtriage/interfaces"
)

const (
	DefaultTTL    = 7 * 24 * time.Hour
	DefaultPrefix = "mailtriage:seen:"
)

// Filter is a SeenFilter backed by one redis key per message id.
type Filter struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ interfaces.SeenFilter = (*Filter)(nil)

func NewFilter(rdb redis.Cmdable, prefix string, ttl time.Duration) *Filter {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Filter{rdb: rdb, prefix: prefix, ttl: ttl}
}

// IsNew marks the id as seen with SET NX and reports whether it was unseen.
func (f *Filter) IsNew(ctx context.Context, messageId string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, f.prefix+messageId, 1, f.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "dedup SETNX")
	}
	return set, nil
}

// MemoryFilter is the process local SeenFilter used when no redis is
// configured. Entries never expire.
type MemoryFilter struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

var _ interfaces.SeenFilter = (*MemoryFilter)(nil)

func NewMemoryFilter() *MemoryFilter {
	return &MemoryFilter{seen: make(map[string]struct{})}
}

func (f *MemoryFilter) IsNew(_ context.Context, messageId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[messageId]; ok {
		return false, nil
	}
	f.seen[messageId] = struct{}{}
	return true, nil
}
