package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
)

// BarCache implements ports.BarCache using SQLite. It is a local
// convenience cache of historical market data; the backend stays the
// source of truth.
type BarCache struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite bar cache.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewBarCache opens (or creates) the cache database and bootstraps its
// schema.
func NewBarCache(cfg Config) (*BarCache, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for bar cache")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/market_cache.db"
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %q: %w", filepath.Dir(dbPath), err)
		}
	}

	// WAL mode so a concurrent reader does not block write-through.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database at %q: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database at %q: %w", dbPath, err)
	}

	c := &BarCache{db: db, logger: cfg.Logger}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Bar cache ready", map[string]interface{}{"path": dbPath})
	return c, nil
}

func (c *BarCache) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS bars (
		symbol    TEXT NOT NULL,
		exchange  TEXT NOT NULL DEFAULT '',
		interval  TEXT NOT NULL,
		open_time INTEGER NOT NULL,
		open      TEXT NOT NULL,
		high      TEXT NOT NULL,
		low       TEXT NOT NULL,
		close     TEXT NOT NULL,
		volume    TEXT NOT NULL,
		PRIMARY KEY (symbol, interval, open_time)
	);
	CREATE TABLE IF NOT EXISTS ticks (
		symbol      TEXT NOT NULL,
		exchange    TEXT NOT NULL DEFAULT '',
		ts          INTEGER NOT NULL,
		last_price  TEXT NOT NULL,
		volume      TEXT NOT NULL,
		bid_price_1 TEXT NOT NULL,
		ask_price_1 TEXT NOT NULL,
		PRIMARY KEY (symbol, ts)
	);`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// SaveBars inserts or replaces bars keyed by (symbol, interval, open time).
func (c *BarCache) SaveBars(ctx context.Context, bars []domain.Bar) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (symbol, exchange, interval, open_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Symbol, b.Exchange, b.Interval, b.OpenTime.UnixMilli(),
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(), b.Volume.String()); err != nil {
			return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
	}
	return nil
}

// FindBars retrieves cached bars ordered by open time ascending.
func (c *BarCache) FindBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.Bar, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT symbol, exchange, interval, open_time, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND interval = ? AND open_time BETWEEN ? AND ?
		ORDER BY open_time ASC`,
		symbol, interval, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		var openTime int64
		var open, high, low, cls, volume string
		if err := rows.Scan(&b.Symbol, &b.Exchange, &b.Interval, &openTime, &open, &high, &low, &cls, &volume); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		b.OpenTime = time.UnixMilli(openTime)
		if b.Open, err = decimal.NewFromString(open); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		if b.High, err = decimal.NewFromString(high); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		if b.Low, err = decimal.NewFromString(low); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		if b.Close, err = decimal.NewFromString(cls); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		if b.Volume, err = decimal.NewFromString(volume); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SaveTicks inserts or replaces ticks keyed by (symbol, timestamp).
func (c *BarCache) SaveTicks(ctx context.Context, ticks []domain.Tick) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO ticks (symbol, exchange, ts, last_price, volume, bid_price_1, ask_price_1)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
	}
	defer stmt.Close()

	for _, t := range ticks {
		if _, err := stmt.ExecContext(ctx, t.Symbol, t.Exchange, t.Timestamp.UnixMilli(),
			t.LastPrice.String(), t.Volume.String(), t.BidPrice1.String(), t.AskPrice1.String()); err != nil {
			return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
	}
	return nil
}

// FindTicks retrieves cached ticks ordered by timestamp ascending.
func (c *BarCache) FindTicks(ctx context.Context, symbol string, start, end time.Time) ([]domain.Tick, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT symbol, exchange, ts, last_price, volume, bid_price_1, ask_price_1
		FROM ticks
		WHERE symbol = ? AND ts BETWEEN ? AND ?
		ORDER BY ts ASC`,
		symbol, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
	}
	defer rows.Close()

	var ticks []domain.Tick
	for rows.Next() {
		var t domain.Tick
		var ts int64
		var last, volume, bid, ask string
		if err := rows.Scan(&t.Symbol, &t.Exchange, &ts, &last, &volume, &bid, &ask); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		t.Timestamp = time.UnixMilli(ts)
		if t.LastPrice, err = decimal.NewFromString(last); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		if t.Volume, err = decimal.NewFromString(volume); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		if t.BidPrice1, err = decimal.NewFromString(bid); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		if t.AskPrice1, err = decimal.NewFromString(ask); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrCacheQueryFailed, err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}

// Clean removes cached data for a symbol, or everything when symbol is
// empty.
func (c *BarCache) Clean(ctx context.Context, symbol string) (int64, error) {
	var total int64
	for _, table := range []string{"bars", "ticks"} {
		var res sql.Result
		var err error
		if symbol == "" {
			res, err = c.db.ExecContext(ctx, "DELETE FROM "+table)
		} else {
			res, err = c.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE symbol = ?", symbol)
		}
		if err != nil {
			return total, fmt.Errorf("%w: %w", ports.ErrCacheUpdateFailed, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// Close releases the underlying database handle.
func (c *BarCache) Close() error { return c.db.Close() }
