package sync

import (
	"context"
	"encoding/json"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/bus"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

type tradeAPI interface {
	GetOrders(ctx context.Context) ([]domain.Order, error)
	PlaceOrder(ctx context.Context, req rest.PlaceOrderRequest) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetTrades(ctx context.Context) ([]domain.Trade, error)
}

// Trade reconciles orders and fills. Orders never transition state locally:
// records are replaced wholesale from pulls and pushes and the last write
// applied wins, which is sound because the server is the only writer of
// truth.
type Trade struct {
	api            tradeAPI
	store          *store.Store
	log            ports.Logger
	fetchingOrders inflight
	fetchingTrades inflight
}

// NewTrade creates the trade reconciler.
func NewTrade(api tradeAPI, st *store.Store, log ports.Logger) *Trade {
	return &Trade{api: api, store: st, log: log}
}

// FetchOrders pulls the full order snapshot and replaces the slice wholesale.
func (t *Trade) FetchOrders(ctx context.Context) error {
	if !t.fetchingOrders.tryAcquire() {
		return nil
	}
	defer t.fetchingOrders.release()

	t.store.SetLoading(true)
	defer t.store.SetLoading(false)

	orders, err := t.api.GetOrders(ctx)
	if err != nil {
		reportError(ctx, t.store, t.log, err, "failed to fetch orders")
		return err
	}
	t.store.SetOrders(orders)
	t.store.ClearError()
	return nil
}

// FetchTrades pulls the full trade snapshot and replaces the slice wholesale.
func (t *Trade) FetchTrades(ctx context.Context) error {
	if !t.fetchingTrades.tryAcquire() {
		return nil
	}
	defer t.fetchingTrades.release()

	t.store.SetLoading(true)
	defer t.store.SetLoading(false)

	trades, err := t.api.GetTrades(ctx)
	if err != nil {
		reportError(ctx, t.store, t.log, err, "failed to fetch trades")
		return err
	}
	t.store.SetTrades(trades)
	t.store.ClearError()
	return nil
}

// PlaceOrder validates the request locally, submits it, and re-pulls the
// order list so the new order (status "submitted") becomes visible.
// Validation failures never reach the wire.
func (t *Trade) PlaceOrder(ctx context.Context, req rest.PlaceOrderRequest) error {
	if err := validateOrder(req); err != nil {
		reportError(ctx, t.store, t.log, err, "order rejected")
		return err
	}
	if _, err := t.api.PlaceOrder(ctx, req); err != nil {
		reportError(ctx, t.store, t.log, err, "failed to place order")
		return err
	}
	t.store.ClearError()
	return t.FetchOrders(ctx)
}

// CancelOrder asks the backend to cancel and converges by re-pulling.
func (t *Trade) CancelOrder(ctx context.Context, orderID string) error {
	if err := t.api.CancelOrder(ctx, orderID); err != nil {
		reportError(ctx, t.store, t.log, err, "failed to cancel order")
		return err
	}
	t.store.ClearError()
	return t.FetchOrders(ctx)
}

func validateOrder(req rest.PlaceOrderRequest) error {
	if req.Symbol == "" {
		return validationErrorf("order symbol is required")
	}
	if !req.Direction.IsValid() {
		return validationErrorf("unknown direction %q", req.Direction)
	}
	if !req.Offset.IsValid() {
		return validationErrorf("unknown offset %q", req.Offset)
	}
	if req.Volume.Sign() <= 0 {
		return validationErrorf("order volume must be positive")
	}
	if req.OrderType == domain.OrderTypeLimit && req.Price.Sign() <= 0 {
		return validationErrorf("limit orders require a positive price")
	}
	return nil
}

// Bind registers push handlers and returns a teardown removing them. An
// order push for a key the store has never seen triggers a one-shot
// collection refresh: an order placed from another session must become
// visible without waiting for a manual pull.
func (t *Trade) Bind(b *bus.Bus) func() {
	ctx := context.Background()
	return unsubscribeAll(
		b.Subscribe("order", func(data json.RawMessage) {
			var o domain.Order
			if !decodePush(ctx, t.log, "order", data, &o) {
				return
			}
			if !t.store.UpdateOrder(o) {
				go func() { _ = t.FetchOrders(context.Background()) }()
			}
		}),
		b.Subscribe("orders", func(data json.RawMessage) {
			var orders []domain.Order
			if !decodePush(ctx, t.log, "orders", data, &orders) {
				return
			}
			t.store.SetOrders(orders)
		}),
		b.Subscribe("trade", func(data json.RawMessage) {
			var tr domain.Trade
			if !decodePush(ctx, t.log, "trade", data, &tr) {
				return
			}
			t.store.AppendTrade(tr)
		}),
		b.Subscribe("trades", func(data json.RawMessage) {
			var trades []domain.Trade
			if !decodePush(ctx, t.log, "trades", data, &trades) {
				return
			}
			t.store.SetTrades(trades)
		}),
	)
}
