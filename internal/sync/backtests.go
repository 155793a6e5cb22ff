package sync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

type backtestAPI interface {
	GetBacktests(ctx context.Context) ([]domain.Backtest, error)
	GetBacktest(ctx context.Context, id string) (domain.Backtest, error)
	RunBacktest(ctx context.Context, req rest.RunBacktestRequest) (domain.Backtest, error)
	StopBacktest(ctx context.Context, id string) error
	GetBacktestResults(ctx context.Context, id string) (domain.Backtest, error)
	GetBacktestChart(ctx context.Context, id string) (json.RawMessage, error)
}

// Backtests reconciles the backtest collection. There is no backtest push
// channel: completion is detected by polling, and staleness up to the poll
// interval is an accepted property, not a bug.
type Backtests struct {
	api      backtestAPI
	store    *store.Store
	log      ports.Logger
	fetching inflight

	mu         sync.Mutex
	pollCancel context.CancelFunc
}

// NewBacktests creates the backtest reconciler.
func NewBacktests(api backtestAPI, st *store.Store, log ports.Logger) *Backtests {
	return &Backtests{api: api, store: st, log: log}
}

// FetchAll pulls the full snapshot and replaces the store slice wholesale.
func (bt *Backtests) FetchAll(ctx context.Context) error {
	if !bt.fetching.tryAcquire() {
		return nil
	}
	defer bt.fetching.release()

	bt.store.SetLoading(true)
	defer bt.store.SetLoading(false)

	backtests, err := bt.api.GetBacktests(ctx)
	if err != nil {
		reportError(ctx, bt.store, bt.log, err, "failed to fetch backtests")
		return err
	}
	bt.store.SetBacktests(backtests)
	bt.store.ClearError()
	return nil
}

// RefreshOne re-pulls a single backtest through its dedicated endpoint.
func (bt *Backtests) RefreshOne(ctx context.Context, id string) error {
	b, err := bt.api.GetBacktest(ctx, id)
	if err != nil {
		reportError(ctx, bt.store, bt.log, err, "failed to refresh backtest")
		return err
	}
	bt.store.UpdateBacktest(b)
	bt.store.ClearError()
	return nil
}

// Run queues a backtest and re-pulls the collection so the new key becomes
// visible.
func (bt *Backtests) Run(ctx context.Context, req rest.RunBacktestRequest) error {
	if req.StrategyName == "" || req.Symbol == "" {
		err := validationErrorf("backtest strategy name and symbol are required")
		reportError(ctx, bt.store, bt.log, err, "failed to run backtest")
		return err
	}
	if req.StartDate == "" || req.EndDate == "" {
		err := validationErrorf("backtest date range is required")
		reportError(ctx, bt.store, bt.log, err, "failed to run backtest")
		return err
	}
	if _, err := bt.api.RunBacktest(ctx, req); err != nil {
		reportError(ctx, bt.store, bt.log, err, "failed to run backtest")
		return err
	}
	bt.store.ClearError()
	return bt.FetchAll(ctx)
}

// Stop aborts a running backtest and converges the local copy.
func (bt *Backtests) Stop(ctx context.Context, id string) error {
	if err := bt.api.StopBacktest(ctx, id); err != nil {
		reportError(ctx, bt.store, bt.log, err, "failed to stop backtest")
		return err
	}
	bt.store.ClearError()
	return bt.RefreshOne(ctx, id)
}

// Results retrieves the result metrics of a finished backtest and upserts
// them into the store.
func (bt *Backtests) Results(ctx context.Context, id string) (domain.Backtest, error) {
	b, err := bt.api.GetBacktestResults(ctx, id)
	if err != nil {
		reportError(ctx, bt.store, bt.log, err, "failed to fetch backtest results")
		return domain.Backtest{}, err
	}
	bt.store.UpdateBacktest(b)
	bt.store.ClearError()
	return b, nil
}

// Chart retrieves the raw chart payload of a finished backtest.
func (bt *Backtests) Chart(ctx context.Context, id string) (json.RawMessage, error) {
	chart, err := bt.api.GetBacktestChart(ctx, id)
	if err != nil {
		reportError(ctx, bt.store, bt.log, err, "failed to fetch backtest chart")
		return nil, err
	}
	bt.store.ClearError()
	return chart, nil
}

// StartPolling re-pulls the collection at the given interval while any
// backtest is unfinished, quieting down when everything is terminal.
func (bt *Backtests) StartPolling(ctx context.Context, every time.Duration) {
	bt.mu.Lock()
	if bt.pollCancel != nil {
		bt.pollCancel()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	bt.pollCancel = cancel
	bt.mu.Unlock()

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if !bt.anyUnfinished() {
					continue
				}
				_ = bt.FetchAll(pollCtx)
			}
		}
	}()
}

// StopPolling tears the poll ticker down.
func (bt *Backtests) StopPolling() {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	if bt.pollCancel != nil {
		bt.pollCancel()
		bt.pollCancel = nil
	}
}

func (bt *Backtests) anyUnfinished() bool {
	for _, b := range bt.store.Backtests() {
		if !b.Status.IsFinished() {
			return true
		}
	}
	return false
}
