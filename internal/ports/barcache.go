package ports

import (
	"context"
	"time"

	"tradeconsole/internal/domain"
)

// BarCache is the local store of historical market data pulled through the
// data endpoints. It is a convenience cache only; the backend remains the
// source of truth.
type BarCache interface {
	// SaveBars inserts or replaces bars keyed by (symbol, interval, open time).
	SaveBars(ctx context.Context, bars []domain.Bar) error
	// FindBars retrieves cached bars for a symbol/interval in [start, end],
	// ordered by open time ascending.
	FindBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.Bar, error)
	// SaveTicks inserts or replaces ticks keyed by (symbol, timestamp).
	SaveTicks(ctx context.Context, ticks []domain.Tick) error
	// FindTicks retrieves cached ticks for a symbol in [start, end], ordered
	// by timestamp ascending.
	FindTicks(ctx context.Context, symbol string, start, end time.Time) ([]domain.Tick, error)
	// Clean removes cached data for a symbol, or everything when symbol is
	// empty. Returns the number of rows removed.
	Clean(ctx context.Context, symbol string) (int64, error)
	// Close releases the underlying database handle.
	Close() error
}
