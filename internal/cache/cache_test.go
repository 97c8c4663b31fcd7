package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/backend/internal/domain"
)

func TestStatsKey(t *testing.T) {
	assert.Equal(t, "stats:2024:q3", StatsKey(2024, 3))
}

func TestMemoryStatsCacheExpires(t *testing.T) {
	c := NewMemoryStatsCache()
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	entry := &StatsEntry{Result: domain.StatsResult{InvoiceCount: 2}, FetchedAt: now}
	require.NoError(t, c.Set(ctx, "k", entry, time.Hour))

	// The cache hands out copies.
	entry.Result.InvoiceCount = 99
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Result.InvoiceCount)

	now = now.Add(time.Hour)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStatsCacheCopiesDiagnostics(t *testing.T) {
	c := NewMemoryStatsCache()
	ctx := context.Background()

	entry := &StatsEntry{Diagnostics: map[string]domain.CollectionDiagnostics{
		domain.KindInvoice: {Scanned: 3, Matched: 2},
	}}
	require.NoError(t, c.Set(ctx, "k", entry, 0))
	entry.Diagnostics[domain.KindInvoice] = domain.CollectionDiagnostics{Scanned: 99}

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Diagnostics[domain.KindInvoice].Scanned)

	got.Diagnostics[domain.KindInvoice] = domain.CollectionDiagnostics{Scanned: 42}
	again, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Diagnostics[domain.KindInvoice].Scanned)
}

func TestNoopStatsCacheNeverHits(t *testing.T) {
	var c NoopStatsCache
	require.NoError(t, c.Set(context.Background(), "k", &StatsEntry{}, time.Minute))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("INVOICEDESK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set INVOICEDESK_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	c := NewRedisStatsCache(addr, "", 0)
	t.Cleanup(func() {
		_ = c.Close()
	})
	require.NoError(t, c.Ping(ctx))

	key := StatsKey(1999, 4)
	fetchedAt := time.Date(1999, time.December, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(ctx, key, &StatsEntry{
		Result:      domain.StatsResult{InvoiceCount: 1, TotalTaxReceived: 100, NetTax: 59.75},
		Diagnostics: map[string]domain.CollectionDiagnostics{domain.KindInvoice: {Scanned: 3, Matched: 1}},
		FetchedAt:   fetchedAt,
	}, time.Minute))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 59.75, got.Result.NetTax)
	assert.True(t, got.FetchedAt.Equal(fetchedAt))
	assert.Equal(t, 1, got.Diagnostics[domain.KindInvoice].Matched)

	_, ok, err = c.Get(ctx, StatsKey(1999, 5))
	require.NoError(t, err)
	assert.False(t, ok)
}
