package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"tradeconsole/internal/domain"
)

type ordersEnvelope struct {
	Orders []domain.Order `json:"orders"`
}

type orderEnvelope struct {
	Order   domain.Order `json:"order"`
	Message string       `json:"message"`
}

type tradesEnvelope struct {
	Trades []domain.Trade `json:"trades"`
}

// PlaceOrderRequest is the payload to submit a new order.
type PlaceOrderRequest struct {
	Symbol    string           `json:"symbol"`
	Direction domain.Direction `json:"direction"`
	Offset    domain.Offset    `json:"offset"`
	Volume    decimal.Decimal  `json:"volume"`
	Price     decimal.Decimal  `json:"price"`
	OrderType domain.OrderType `json:"order_type"`
}

// GetOrders pulls the full order collection snapshot.
func (c *Client) GetOrders(ctx context.Context) ([]domain.Order, error) {
	var env ordersEnvelope
	if err := c.do(ctx, "GetOrders", http.MethodGet, "/api/trade/orders", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// PlaceOrder submits a new order and returns the accepted record
// (status "submitted" until the server reports otherwise).
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	var env orderEnvelope
	if err := c.do(ctx, "PlaceOrder", http.MethodPost, "/api/trade/orders", nil, req, &env); err != nil {
		return domain.Order{}, err
	}
	return env.Order, nil
}

// CancelOrder asks the backend to cancel a working order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	path := "/api/trade/orders/" + url.PathEscape(orderID)
	return c.do(ctx, "CancelOrder", http.MethodDelete, path, nil, nil, nil)
}

// GetTrades pulls the full trade collection snapshot.
func (c *Client) GetTrades(ctx context.Context) ([]domain.Trade, error) {
	var env tradesEnvelope
	if err := c.do(ctx, "GetTrades", http.MethodGet, "/api/trade/trades", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Trades, nil
}
