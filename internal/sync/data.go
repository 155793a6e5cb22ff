package sync

import (
	"context"
	"fmt"
	"io"
	"os"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

type dataAPI interface {
	GetBars(ctx context.Context, p rest.MarketDataParams) ([]domain.Bar, error)
	GetTicks(ctx context.Context, p rest.MarketDataParams) ([]domain.Tick, error)
	ImportData(ctx context.Context, file io.Reader, filename, symbol, exchange, interval string) (string, error)
	ExportData(ctx context.Context, req rest.ExportRequest) (io.ReadCloser, error)
	CleanData(ctx context.Context, p rest.CleanParams) (int64, string, error)
}

// Data manages historical market data: pulls write through to the local
// cache so previously fetched slices stay usable when the backend is away.
type Data struct {
	api   dataAPI
	cache ports.BarCache
	store *store.Store
	log   ports.Logger
}

// NewData creates the data manager. cache may be nil to disable caching.
func NewData(api dataAPI, cache ports.BarCache, st *store.Store, log ports.Logger) *Data {
	return &Data{api: api, cache: cache, store: st, log: log}
}

// FetchBars pulls historical bars and writes them through to the cache.
func (d *Data) FetchBars(ctx context.Context, p rest.MarketDataParams) ([]domain.Bar, error) {
	bars, err := d.api.GetBars(ctx, p)
	if err != nil {
		reportError(ctx, d.store, d.log, err, "failed to fetch bars")
		return nil, err
	}
	if d.cache != nil && len(bars) > 0 {
		if cacheErr := d.cache.SaveBars(ctx, bars); cacheErr != nil {
			// Cache trouble must not break the pull.
			d.log.Warn(ctx, "Bar cache write failed", map[string]interface{}{"error": cacheErr.Error()})
		}
	}
	d.store.ClearError()
	return bars, nil
}

// FetchTicks pulls historical ticks and writes them through to the cache.
func (d *Data) FetchTicks(ctx context.Context, p rest.MarketDataParams) ([]domain.Tick, error) {
	ticks, err := d.api.GetTicks(ctx, p)
	if err != nil {
		reportError(ctx, d.store, d.log, err, "failed to fetch ticks")
		return nil, err
	}
	if d.cache != nil && len(ticks) > 0 {
		if cacheErr := d.cache.SaveTicks(ctx, ticks); cacheErr != nil {
			d.log.Warn(ctx, "Tick cache write failed", map[string]interface{}{"error": cacheErr.Error()})
		}
	}
	d.store.ClearError()
	return ticks, nil
}

// Import uploads a market data file for server-side ingestion.
func (d *Data) Import(ctx context.Context, path, symbol, exchange, interval string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		err = validationErrorf("cannot open %s: %v", path, err)
		reportError(ctx, d.store, d.log, err, "failed to import data")
		return "", err
	}
	defer f.Close()

	msg, err := d.api.ImportData(ctx, f, path, symbol, exchange, interval)
	if err != nil {
		reportError(ctx, d.store, d.log, err, "failed to import data")
		return "", err
	}
	d.store.ClearError()
	return msg, nil
}

// Export streams the backend's encoded market data to a local file and
// reports how many bytes were written.
func (d *Data) Export(ctx context.Context, req rest.ExportRequest, destPath string) (int64, error) {
	body, err := d.api.ExportData(ctx, req)
	if err != nil {
		reportError(ctx, d.store, d.log, err, "failed to export data")
		return 0, err
	}
	defer body.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		err = fmt.Errorf("cannot create %s: %w", destPath, err)
		reportError(ctx, d.store, d.log, err, "failed to export data")
		return 0, err
	}
	defer dest.Close()

	n, err := io.Copy(dest, body)
	if err != nil {
		reportError(ctx, d.store, d.log, err, "failed to export data")
		return n, err
	}
	d.store.ClearError()
	return n, nil
}

// Clean removes market data on the backend and purges the matching slice of
// the local cache.
func (d *Data) Clean(ctx context.Context, p rest.CleanParams) (int64, error) {
	count, msg, err := d.api.CleanData(ctx, p)
	if err != nil {
		reportError(ctx, d.store, d.log, err, "failed to clean data")
		return 0, err
	}
	if d.cache != nil {
		symbol := p.Symbol
		if p.All {
			symbol = ""
		}
		if _, cacheErr := d.cache.Clean(ctx, symbol); cacheErr != nil {
			d.log.Warn(ctx, "Cache purge failed", map[string]interface{}{"error": cacheErr.Error()})
		}
	}
	d.log.Info(ctx, "Data cleaned", map[string]interface{}{"count": count, "message": msg})
	d.store.ClearError()
	return count, nil
}

// CachedBars reads bars from the local cache only; used when the backend is
// unreachable or for offline inspection.
func (d *Data) CachedBars(ctx context.Context, symbol, interval string) ([]domain.Bar, error) {
	if d.cache == nil {
		return nil, nil
	}
	return d.cache.FindBars(ctx, symbol, interval, timeZero, timeMax)
}
