package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/internal/domain"
)

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestCache(t *testing.T) *BarCache {
	t.Helper()
	c, err := NewBarCache(Config{DBPath: ":memory:", Logger: noopLogger{}})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func bar(symbol string, openTime time.Time, close int64) domain.Bar {
	return domain.Bar{
		Symbol:   symbol,
		Interval: "1h",
		OpenTime: openTime,
		Open:     decimal.NewFromInt(close - 1),
		High:     decimal.NewFromInt(close + 2),
		Low:      decimal.NewFromInt(close - 3),
		Close:    decimal.NewFromInt(close),
		Volume:   decimal.NewFromInt(10),
	}
}

func TestSaveAndFindBars(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveBars(ctx, []domain.Bar{
		bar("BTCUSDT", base, 100),
		bar("BTCUSDT", base.Add(time.Hour), 105),
		bar("ETHUSDT", base, 20),
	}))

	got, err := c.FindBars(ctx, "BTCUSDT", "1h", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].OpenTime.Before(got[1].OpenTime), "bars come back time-ordered")
	assert.True(t, got[0].Close.Equal(decimal.NewFromInt(100)))
	assert.True(t, got[1].Close.Equal(decimal.NewFromInt(105)))

	// Range bounds are inclusive and per-symbol.
	got, err = c.FindBars(ctx, "ETHUSDT", "1h", base, base)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ETHUSDT", got[0].Symbol)
}

func TestSaveBarsReplacesSameKey(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveBars(ctx, []domain.Bar{bar("BTCUSDT", base, 100)}))
	// Re-fetching the same range writes the same keys again; the cache must
	// converge, not accumulate.
	require.NoError(t, c.SaveBars(ctx, []domain.Bar{bar("BTCUSDT", base, 101)}))

	got, err := c.FindBars(ctx, "BTCUSDT", "1h", base, base)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Close.Equal(decimal.NewFromInt(101)))
}

func TestSaveAndFindTicks(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ticks := []domain.Tick{
		{Symbol: "BTCUSDT", Timestamp: base, LastPrice: decimal.NewFromInt(100),
			Volume: decimal.NewFromInt(1), BidPrice1: decimal.NewFromInt(99), AskPrice1: decimal.NewFromInt(101)},
		{Symbol: "BTCUSDT", Timestamp: base.Add(time.Second), LastPrice: decimal.NewFromInt(102),
			Volume: decimal.NewFromInt(2), BidPrice1: decimal.NewFromInt(101), AskPrice1: decimal.NewFromInt(103)},
	}
	require.NoError(t, c.SaveTicks(ctx, ticks))

	got, err := c.FindTicks(ctx, "BTCUSDT", base, base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[1].LastPrice.Equal(decimal.NewFromInt(102)))
	assert.Equal(t, base.Add(time.Second).UnixMilli(), got[1].Timestamp.UnixMilli())
}

func TestCleanBySymbolAndAll(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveBars(ctx, []domain.Bar{
		bar("BTCUSDT", base, 100),
		bar("ETHUSDT", base, 20),
	}))
	require.NoError(t, c.SaveTicks(ctx, []domain.Tick{
		{Symbol: "BTCUSDT", Timestamp: base, LastPrice: decimal.NewFromInt(100),
			Volume: decimal.Zero, BidPrice1: decimal.Zero, AskPrice1: decimal.Zero},
	}))

	n, err := c.Clean(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "one bar and one tick removed")

	remaining, err := c.FindBars(ctx, "ETHUSDT", "1h", base, base)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	n, err = c.Clean(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "empty symbol wipes everything left")
}
