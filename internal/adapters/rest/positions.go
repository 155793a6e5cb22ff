package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"tradeconsole/internal/domain"
)

type positionsEnvelope struct {
	Positions []domain.Position `json:"positions"`
}

type positionEnvelope struct {
	Position domain.Position `json:"position"`
	Message  string          `json:"message"`
}

// PositionPnl is the profit-and-loss view of one position.
type PositionPnl struct {
	Symbol        string          `json:"symbol"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	PnlRatio      decimal.Decimal `json:"pnl_ratio"`
}

// GetPositions pulls the full position collection snapshot.
func (c *Client) GetPositions(ctx context.Context) ([]domain.Position, error) {
	var env positionsEnvelope
	if err := c.do(ctx, "GetPositions", http.MethodGet, "/api/positions", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Positions, nil
}

// GetPosition retrieves a single position by symbol.
func (c *Client) GetPosition(ctx context.Context, symbol string) (domain.Position, error) {
	var env positionEnvelope
	path := "/api/positions/" + url.PathEscape(symbol)
	if err := c.do(ctx, "GetPosition", http.MethodGet, path, nil, nil, &env); err != nil {
		return domain.Position{}, err
	}
	return env.Position, nil
}

// GetPositionPnl retrieves the current P&L of one position.
func (c *Client) GetPositionPnl(ctx context.Context, symbol string) (PositionPnl, error) {
	var pnl PositionPnl
	path := "/api/positions/" + url.PathEscape(symbol) + "/pnl"
	if err := c.do(ctx, "GetPositionPnl", http.MethodGet, path, nil, nil, &pnl); err != nil {
		return PositionPnl{}, err
	}
	return pnl, nil
}

// RefreshPosition asks the backend to re-query the position at the broker
// and returns the refreshed record.
func (c *Client) RefreshPosition(ctx context.Context, symbol string) (domain.Position, error) {
	var env positionEnvelope
	path := "/api/positions/" + url.PathEscape(symbol) + "/refresh"
	if err := c.do(ctx, "RefreshPosition", http.MethodPost, path, nil, nil, &env); err != nil {
		return domain.Position{}, err
	}
	return env.Position, nil
}
