package sync

import (
	"context"
	"sync"
	"time"

	"tradeconsole/internal/bus"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

// BackendAPI is everything the reconcilers need from the REST transport.
// *rest.Client satisfies it.
type BackendAPI interface {
	accountAPI
	positionAPI
	quoteAPI
	strategyAPI
	backtestAPI
	tradeAPI
	dataAPI
	Health(ctx context.Context) error
}

// Config holds the engine's polling knobs.
type Config struct {
	QuotePollInterval    time.Duration // 0 disables the quote poll
	BacktestPollInterval time.Duration
	HealthPollInterval   time.Duration
}

// Engine owns the push connection, the event bus, the store and all entity
// reconcilers. Start wires everything; Stop tears it down in reverse order.
type Engine struct {
	cfg   Config
	api   BackendAPI
	push  ports.PushConn
	bus   *bus.Bus
	store *store.Store
	log   ports.Logger

	Accounts   *Accounts
	Positions  *Positions
	Quotes     *Quotes
	Strategies *Strategies
	Backtests  *Backtests
	Trade      *Trade
	Data       *Data

	mu        sync.Mutex
	cancel    context.CancelFunc
	unbind    func()
	connected bool // tracks whether we ever connected, to tell reconnects apart
}

// NewEngine assembles the synchronization core around a backend transport
// pair.
func NewEngine(api BackendAPI, push ports.PushConn, cache ports.BarCache, st *store.Store, log ports.Logger, cfg Config) *Engine {
	if cfg.BacktestPollInterval <= 0 {
		cfg.BacktestPollInterval = 5 * time.Second
	}
	if cfg.HealthPollInterval <= 0 {
		cfg.HealthPollInterval = 30 * time.Second
	}

	b := bus.New(push)
	e := &Engine{
		cfg:   cfg,
		push:  push,
		bus:   b,
		store: st,
		log:   log,
	}
	e.Accounts = NewAccounts(api, st, log)
	e.Positions = NewPositions(api, st, log)
	e.Quotes = NewQuotes(api, push, st, log)
	e.Strategies = NewStrategies(api, st, log)
	e.Backtests = NewBacktests(api, st, log)
	e.Trade = NewTrade(api, st, log)
	e.Data = NewData(api, cache, st, log)
	e.api = api
	return e
}

// Bus exposes the event bus for additional consumers (views subscribing to
// raw events).
func (e *Engine) Bus() *bus.Bus { return e.bus }

// WaitReady blocks until the backend health endpoint answers ok, probing
// once per second. Gates the initial render.
func (e *Engine) WaitReady(ctx context.Context) error {
	for {
		if err := e.api.Health(ctx); err == nil {
			return nil
		} else if ctx.Err() != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// Start connects the push channel, installs the single connection state
// listener, binds all push handlers, starts the pollers and kicks off the
// initial snapshot pulls.
func (e *Engine) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.push.OnStateChange(func(state ports.ConnState, err error) {
		e.onStateChange(runCtx, state, err)
	})

	e.unbind = unsubscribeAll(
		e.Accounts.Bind(e.bus),
		e.Positions.Bind(e.bus),
		e.Quotes.Bind(e.bus),
		e.Strategies.Bind(e.bus),
		e.Trade.Bind(e.bus),
	)

	if err := e.push.Connect(runCtx); err != nil {
		// Pull-based sync still works without the push channel; the
		// indicator stays disconnected and polls carry the load.
		e.log.Warn(runCtx, "Push channel unavailable, continuing pull-only", map[string]interface{}{"error": err.Error()})
	}

	e.Quotes.SetPollInterval(runCtx, e.cfg.QuotePollInterval)
	e.Backtests.StartPolling(runCtx, e.cfg.BacktestPollInterval)
	go e.healthLoop(runCtx)
	go e.refreshAll(runCtx)
	return nil
}

// Stop tears down pollers, push handlers and the connection.
func (e *Engine) Stop() {
	e.Quotes.StopPolling()
	e.Backtests.StopPolling()
	if e.unbind != nil {
		e.unbind()
		e.unbind = nil
	}
	e.push.Disconnect()

	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// refreshAll pulls every snapshot once. Individual failures land in the
// store error field; the remaining pulls still run.
func (e *Engine) refreshAll(ctx context.Context) {
	_ = e.Accounts.FetchAll(ctx)
	_ = e.Positions.FetchAll(ctx)
	_ = e.Quotes.FetchAll(ctx)
	_ = e.Trade.FetchOrders(ctx)
	_ = e.Trade.FetchTrades(ctx)
	_ = e.Strategies.FetchAll(ctx)
	_ = e.Backtests.FetchAll(ctx)
}

// onStateChange is the single system-wide connection listener. On a
// reconnect it replays quote subscriptions (the transport does not) and
// re-pulls all snapshots once to cover pushes missed while down.
func (e *Engine) onStateChange(ctx context.Context, state ports.ConnState, err error) {
	switch state {
	case ports.ConnStateConnected:
		e.store.SetConnected(true)
		e.mu.Lock()
		reconnect := e.connected
		e.connected = true
		e.mu.Unlock()
		if reconnect {
			e.log.Info(ctx, "Push channel reconnected, replaying subscriptions")
			e.Quotes.Resubscribe(ctx)
			go e.refreshAll(ctx)
		}
	case ports.ConnStateDisconnected:
		e.store.SetConnected(false)
	case ports.ConnStateConnectError:
		e.store.SetConnected(false)
		if err != nil {
			e.store.SetError("push channel error: " + err.Error())
		}
	}
}

// healthLoop probes the backend on a fixed cadence and surfaces failures.
func (e *Engine) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.HealthPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.api.Health(ctx); err != nil {
				reportError(ctx, e.store, e.log, err, "backend health check failed")
			}
		}
	}
}
