package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"tradeconsole/internal/domain"
)

type backtestsEnvelope struct {
	Backtests []domain.Backtest `json:"backtests"`
}

type backtestEnvelope struct {
	Backtest domain.Backtest `json:"backtest"`
	Message  string          `json:"message"`
}

// RunBacktestRequest is the payload to start a backtest run.
type RunBacktestRequest struct {
	StrategyName string                 `json:"strategy_name"`
	Symbol       string                 `json:"symbol"`
	StartDate    string                 `json:"start_date"`
	EndDate      string                 `json:"end_date"`
	Parameters   map[string]interface{} `json:"parameters,omitempty"`
}

// GetBacktests pulls the full backtest collection snapshot.
func (c *Client) GetBacktests(ctx context.Context) ([]domain.Backtest, error) {
	var env backtestsEnvelope
	if err := c.do(ctx, "GetBacktests", http.MethodGet, "/api/backtest", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Backtests, nil
}

// GetBacktest retrieves a single backtest by ID.
func (c *Client) GetBacktest(ctx context.Context, id string) (domain.Backtest, error) {
	var env backtestEnvelope
	path := "/api/backtest/" + url.PathEscape(id)
	if err := c.do(ctx, "GetBacktest", http.MethodGet, path, nil, nil, &env); err != nil {
		return domain.Backtest{}, err
	}
	return env.Backtest, nil
}

// RunBacktest queues a backtest run on the backend.
func (c *Client) RunBacktest(ctx context.Context, req RunBacktestRequest) (domain.Backtest, error) {
	var env backtestEnvelope
	if err := c.do(ctx, "RunBacktest", http.MethodPost, "/api/backtest/run", nil, req, &env); err != nil {
		return domain.Backtest{}, err
	}
	return env.Backtest, nil
}

// StopBacktest aborts a running backtest.
func (c *Client) StopBacktest(ctx context.Context, id string) error {
	path := "/api/backtest/" + url.PathEscape(id) + "/stop"
	return c.do(ctx, "StopBacktest", http.MethodPost, path, nil, nil, nil)
}

// GetBacktestResults retrieves the result metrics of a finished backtest.
func (c *Client) GetBacktestResults(ctx context.Context, id string) (domain.Backtest, error) {
	var env backtestEnvelope
	path := "/api/backtest/" + url.PathEscape(id) + "/results"
	if err := c.do(ctx, "GetBacktestResults", http.MethodGet, path, nil, nil, &env); err != nil {
		return domain.Backtest{}, err
	}
	return env.Backtest, nil
}

// GetBacktestChart retrieves the chart payload of a finished backtest. The
// shape is owned by the charting widget, so it stays raw JSON here.
func (c *Client) GetBacktestChart(ctx context.Context, id string) (json.RawMessage, error) {
	var chart json.RawMessage
	path := "/api/backtest/" + url.PathEscape(id) + "/chart"
	if err := c.do(ctx, "GetBacktestChart", http.MethodGet, path, nil, nil, &chart); err != nil {
		return nil, err
	}
	return chart, nil
}
