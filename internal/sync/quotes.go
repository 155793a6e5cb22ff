package sync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tradeconsole/internal/bus"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

type quoteAPI interface {
	GetQuotes(ctx context.Context) ([]domain.Quote, error)
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	SubscribeQuote(ctx context.Context, symbol, exchange string) error
	UnsubscribeQuote(ctx context.Context, symbol string) error
}

type quoteEmitter interface {
	Emit(event string, payload interface{}) error
}

// Quotes reconciles the quote collection: push-driven upserts for subscribed
// symbols plus a timed full pull as a correctness backstop against missed or
// out-of-order pushes. Both paths write through the same store upsert, so
// the last write applied wins with no merge logic.
type Quotes struct {
	api      quoteAPI
	emitter  quoteEmitter
	store    *store.Store
	log      ports.Logger
	fetching inflight

	mu         sync.Mutex
	subscribed map[string]string // symbol -> exchange, replayed after reconnect
	pollCancel context.CancelFunc
	pollEvery  time.Duration
}

// NewQuotes creates the quote reconciler.
func NewQuotes(api quoteAPI, emitter quoteEmitter, st *store.Store, log ports.Logger) *Quotes {
	return &Quotes{
		api:        api,
		emitter:    emitter,
		store:      st,
		log:        log,
		subscribed: make(map[string]string),
	}
}

// FetchAll pulls the full snapshot and replaces the store slice wholesale.
func (q *Quotes) FetchAll(ctx context.Context) error {
	if !q.fetching.tryAcquire() {
		return nil
	}
	defer q.fetching.release()

	q.store.SetLoading(true)
	defer q.store.SetLoading(false)

	quotes, err := q.api.GetQuotes(ctx)
	if err != nil {
		reportError(ctx, q.store, q.log, err, "failed to fetch quotes")
		return err
	}
	q.store.SetQuotes(quotes)
	q.store.ClearError()
	return nil
}

// RefreshOne re-pulls a single quote through its dedicated endpoint.
func (q *Quotes) RefreshOne(ctx context.Context, symbol string) error {
	quote, err := q.api.GetQuote(ctx, symbol)
	if err != nil {
		reportError(ctx, q.store, q.log, err, "failed to refresh quote")
		return err
	}
	q.store.PutQuote(quote)
	q.store.ClearError()
	return nil
}

// Subscribe registers tick interest for a symbol, both with the REST API and
// on the push channel. The symbol is remembered for reconnect replay.
func (q *Quotes) Subscribe(ctx context.Context, symbol, exchange string) error {
	if err := q.api.SubscribeQuote(ctx, symbol, exchange); err != nil {
		reportError(ctx, q.store, q.log, err, "failed to subscribe quote")
		return err
	}
	if err := q.emitter.Emit("subscribe_quote", map[string]string{"symbol": symbol, "exchange": exchange}); err != nil {
		q.log.Warn(ctx, "subscribe_quote emit failed; push ticks may lag until reconnect",
			map[string]interface{}{"symbol": symbol, "error": err.Error()})
	}
	q.mu.Lock()
	q.subscribed[symbol] = exchange
	q.mu.Unlock()
	q.store.ClearError()
	return nil
}

// Unsubscribe removes tick interest for a symbol. Idempotent: repeating the
// call leaves the same end state and surfaces no error.
func (q *Quotes) Unsubscribe(ctx context.Context, symbol string) error {
	if err := q.api.UnsubscribeQuote(ctx, symbol); err != nil {
		reportError(ctx, q.store, q.log, err, "failed to unsubscribe quote")
		return err
	}
	if err := q.emitter.Emit("unsubscribe_quote", map[string]string{"symbol": symbol}); err != nil {
		q.log.Debug(ctx, "unsubscribe_quote emit failed", map[string]interface{}{"symbol": symbol})
	}
	q.mu.Lock()
	delete(q.subscribed, symbol)
	q.mu.Unlock()
	q.store.ClearError()
	return nil
}

// Resubscribe replays all remembered subscriptions on the push channel.
// Called by the engine after a reconnect; the transport does not do this.
func (q *Quotes) Resubscribe(ctx context.Context) {
	q.mu.Lock()
	symbols := make(map[string]string, len(q.subscribed))
	for s, e := range q.subscribed {
		symbols[s] = e
	}
	q.mu.Unlock()

	for symbol, exchange := range symbols {
		if err := q.emitter.Emit("subscribe_quote", map[string]string{"symbol": symbol, "exchange": exchange}); err != nil {
			q.log.Warn(ctx, "Resubscribe emit failed", map[string]interface{}{"symbol": symbol, "error": err.Error()})
		}
	}
}

// SetPollInterval restarts the timed snapshot pull at the given interval.
// Zero stops polling. Allowed values mirror the UI: 1s, 3s, 5s, stopped.
func (q *Quotes) SetPollInterval(ctx context.Context, every time.Duration) {
	q.mu.Lock()
	if q.pollCancel != nil {
		q.pollCancel()
		q.pollCancel = nil
	}
	q.pollEvery = every
	if every <= 0 {
		q.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	q.pollCancel = cancel
	q.mu.Unlock()

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				// Errors already land in the store; keep polling.
				_ = q.FetchAll(pollCtx)
			}
		}
	}()
}

// StopPolling tears the poll ticker down.
func (q *Quotes) StopPolling() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pollCancel != nil {
		q.pollCancel()
		q.pollCancel = nil
	}
}

// Bind registers push handlers and returns a teardown removing them.
// Both tick and quote events carry a quote payload; unknown symbols are
// promoted to inserts because a fresh subscription can tick before the
// first snapshot lands.
func (q *Quotes) Bind(b *bus.Bus) func() {
	ctx := context.Background()
	putOne := func(event string) ports.PushHandler {
		return func(data json.RawMessage) {
			var quote domain.Quote
			if !decodePush(ctx, q.log, event, data, &quote) {
				return
			}
			q.store.PutQuote(quote)
		}
	}
	return unsubscribeAll(
		b.Subscribe("tick", putOne("tick")),
		b.Subscribe("quote", putOne("quote")),
		b.Subscribe("quotes", func(data json.RawMessage) {
			var quotes []domain.Quote
			if !decodePush(ctx, q.log, "quotes", data, &quotes) {
				return
			}
			for _, quote := range quotes {
				q.store.PutQuote(quote)
			}
		}),
	)
}
