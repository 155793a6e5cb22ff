package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/adapters/sqlite"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/store"
)

func newTestBarCache(t *testing.T) *sqlite.BarCache {
	t.Helper()
	c, err := sqlite.NewBarCache(sqlite.Config{DBPath: ":memory:", Logger: &mockLogger{}})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFetchBarsWritesThroughCache(t *testing.T) {
	open := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	api := newMockBackend()
	api.bars = []domain.Bar{{
		Symbol: "BTCUSDT", Interval: "1h", OpenTime: open,
		Open: decimal.NewFromInt(99), High: decimal.NewFromInt(103),
		Low: decimal.NewFromInt(97), Close: decimal.NewFromInt(100),
		Volume: decimal.NewFromInt(10),
	}}
	cache := newTestBarCache(t)
	d := NewData(api, cache, store.New(), &mockLogger{})

	got, err := d.FetchBars(context.Background(), rest.MarketDataParams{Symbol: "BTCUSDT", Interval: "1h"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// The pull is readable offline afterwards.
	cached, err := d.CachedBars(context.Background(), "BTCUSDT", "1h")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.True(t, cached[0].Close.Equal(decimal.NewFromInt(100)))
}

func TestFetchBarsWithoutCache(t *testing.T) {
	api := newMockBackend()
	api.bars = []domain.Bar{{Symbol: "BTCUSDT", Interval: "1h", OpenTime: time.Now()}}
	d := NewData(api, nil, store.New(), &mockLogger{})

	got, err := d.FetchBars(context.Background(), rest.MarketDataParams{Symbol: "BTCUSDT"})
	require.NoError(t, err)
	assert.Len(t, got, 1, "a nil cache disables write-through, not the pull")
}

func TestCleanPurgesLocalCache(t *testing.T) {
	open := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	api := newMockBackend()
	api.bars = []domain.Bar{{
		Symbol: "BTCUSDT", Interval: "1h", OpenTime: open,
		Open: decimal.NewFromInt(1), High: decimal.NewFromInt(1),
		Low: decimal.NewFromInt(1), Close: decimal.NewFromInt(1),
		Volume: decimal.NewFromInt(1),
	}}
	cache := newTestBarCache(t)
	d := NewData(api, cache, store.New(), &mockLogger{})

	_, err := d.FetchBars(context.Background(), rest.MarketDataParams{Symbol: "BTCUSDT", Interval: "1h"})
	require.NoError(t, err)

	_, err = d.Clean(context.Background(), rest.CleanParams{Symbol: "BTCUSDT"})
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("CleanData"))

	cached, err := d.CachedBars(context.Background(), "BTCUSDT", "1h")
	require.NoError(t, err)
	assert.Empty(t, cached, "server-side clean purges the local slice too")
}

func TestExportStreamsToFile(t *testing.T) {
	api := newMockBackend()
	d := NewData(api, nil, store.New(), &mockLogger{})

	dest := filepath.Join(t.TempDir(), "export.csv")
	n, err := d.Export(context.Background(), rest.ExportRequest{Symbol: "BTCUSDT", Format: "csv"}, dest)
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "symbol,open,close\n", string(raw))
}

func TestImportMissingFileStaysLocal(t *testing.T) {
	api := newMockBackend()
	st := store.New()
	d := NewData(api, nil, st, &mockLogger{})

	_, err := d.Import(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), "BTCUSDT", "", "1h")
	require.Error(t, err)
	assert.Equal(t, 0, api.count("ImportData"))
	assert.NotEmpty(t, st.Error())
}
