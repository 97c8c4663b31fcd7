package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"invoicedesk/backend/internal/domain"
)

// StatsEntry is one cached aggregation and the time it was computed.
type StatsEntry struct {
	Result      domain.StatsResult                      `json:"result"`
	Diagnostics map[string]domain.CollectionDiagnostics `json:"diagnostics,omitempty"`
	FetchedAt   time.Time                               `json:"fetchedAt"`
}

// StatsCache stores entries until ttl elapses. Staleness is decided by the
// caller from FetchedAt, so ttl is a retention bound, not a freshness window.
type StatsCache interface {
	Get(ctx context.Context, key string) (*StatsEntry, bool, error)
	Set(ctx context.Context, key string, value *StatsEntry, ttl time.Duration) error
}

// clone copies the entry with its own Diagnostics map.
func (e StatsEntry) clone() StatsEntry {
	if e.Diagnostics != nil {
		diagnostics := make(map[string]domain.CollectionDiagnostics, len(e.Diagnostics))
		for name, d := range e.Diagnostics {
			diagnostics[name] = d
		}
		e.Diagnostics = diagnostics
	}
	return e
}

func StatsKey(year int, quarter int) string {
	return fmt.Sprintf("stats:%d:q%d", year, quarter)
}

type NoopStatsCache struct{}

func (NoopStatsCache) Get(_ context.Context, _ string) (*StatsEntry, bool, error) {
	return nil, false, nil
}

func (NoopStatsCache) Set(_ context.Context, _ string, _ *StatsEntry, _ time.Duration) error {
	return nil
}

// MemoryStatsCache is the in-process cache used when no Redis is configured.
type MemoryStatsCache struct {
	mu      sync.Mutex
	entries map[string]memoryItem
	now     func() time.Time
}

type memoryItem struct {
	entry     StatsEntry
	expiresAt time.Time
}

func NewMemoryStatsCache() *MemoryStatsCache {
	return &MemoryStatsCache{
		entries: make(map[string]memoryItem),
		now:     time.Now,
	}
}

func (c *MemoryStatsCache) Get(_ context.Context, key string) (*StatsEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	entry := item.entry.clone()
	return &entry, true, nil
}

func (c *MemoryStatsCache) Set(_ context.Context, key string, value *StatsEntry, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	item := memoryItem{entry: value.clone()}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = item
	c.mu.Unlock()
	return nil
}
