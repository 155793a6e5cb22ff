package sync

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/bus"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

type positionAPI interface {
	GetPositions(ctx context.Context) ([]domain.Position, error)
	GetPosition(ctx context.Context, symbol string) (domain.Position, error)
	RefreshPosition(ctx context.Context, symbol string) (domain.Position, error)
	PlaceOrder(ctx context.Context, req rest.PlaceOrderRequest) (domain.Order, error)
}

// Positions reconciles the position collection.
type Positions struct {
	api      positionAPI
	store    *store.Store
	log      ports.Logger
	fetching inflight
}

// NewPositions creates the position reconciler.
func NewPositions(api positionAPI, st *store.Store, log ports.Logger) *Positions {
	return &Positions{api: api, store: st, log: log}
}

// FetchAll pulls the full snapshot and replaces the store slice wholesale.
func (p *Positions) FetchAll(ctx context.Context) error {
	if !p.fetching.tryAcquire() {
		return nil
	}
	defer p.fetching.release()

	p.store.SetLoading(true)
	defer p.store.SetLoading(false)

	positions, err := p.api.GetPositions(ctx)
	if err != nil {
		reportError(ctx, p.store, p.log, err, "failed to fetch positions")
		return err
	}
	p.store.SetPositions(positions)
	p.store.ClearError()
	return nil
}

// RefreshOne re-pulls a single position through its dedicated endpoint.
func (p *Positions) RefreshOne(ctx context.Context, symbol string) error {
	pos, err := p.api.GetPosition(ctx, symbol)
	if err != nil {
		reportError(ctx, p.store, p.log, err, "failed to refresh position")
		return err
	}
	p.store.UpdatePosition(pos)
	p.store.ClearError()
	return nil
}

// RefreshRemote asks the backend to re-query the position at the broker.
func (p *Positions) RefreshRemote(ctx context.Context, symbol string) error {
	pos, err := p.api.RefreshPosition(ctx, symbol)
	if err != nil {
		reportError(ctx, p.store, p.log, err, "failed to refresh position")
		return err
	}
	p.store.UpdatePosition(pos)
	p.store.ClearError()
	return nil
}

// Close places a closing order against the position. A zero price means a
// market close, otherwise a limit close at the given price. On success the
// position list is re-pulled to converge.
func (p *Positions) Close(ctx context.Context, symbol string, direction domain.Direction, volume, price decimal.Decimal) error {
	if volume.Sign() <= 0 {
		err := validationErrorf("close volume must be positive")
		reportError(ctx, p.store, p.log, err, "failed to close position")
		return err
	}
	orderType := domain.OrderTypeMarket
	if price.Sign() > 0 {
		orderType = domain.OrderTypeLimit
	}

	_, err := p.api.PlaceOrder(ctx, rest.PlaceOrderRequest{
		Symbol:    symbol,
		Direction: direction,
		Offset:    domain.OffsetClose,
		Volume:    volume,
		Price:     price,
		OrderType: orderType,
	})
	if err != nil {
		reportError(ctx, p.store, p.log, err, "failed to close position")
		return err
	}
	p.store.ClearError()
	return p.FetchAll(ctx)
}

// Bind registers push handlers and returns a teardown removing them.
func (p *Positions) Bind(b *bus.Bus) func() {
	ctx := context.Background()
	return unsubscribeAll(
		b.Subscribe("position", func(data json.RawMessage) {
			var pos domain.Position
			if !decodePush(ctx, p.log, "position", data, &pos) {
				return
			}
			p.store.UpdatePosition(pos)
		}),
		b.Subscribe("positions", func(data json.RawMessage) {
			var positions []domain.Position
			if !decodePush(ctx, p.log, "positions", data, &positions) {
				return
			}
			p.store.SetPositions(positions)
		}),
	)
}
