package rest

import (
	"context"
	"net/http"
	"net/url"

	"tradeconsole/internal/domain"
)

type strategiesEnvelope struct {
	Strategies []domain.Strategy `json:"strategies"`
}

type strategyEnvelope struct {
	Strategy domain.Strategy `json:"strategy"`
	Message  string          `json:"message"`
}

type strategyLogEnvelope struct {
	Log []string `json:"log"`
}

// StrategyRequest is the create/update payload for a strategy.
type StrategyRequest struct {
	Name       string                 `json:"name"`
	ClassName  string                 `json:"class_name"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// GetStrategies pulls the full strategy collection snapshot.
func (c *Client) GetStrategies(ctx context.Context) ([]domain.Strategy, error) {
	var env strategiesEnvelope
	if err := c.do(ctx, "GetStrategies", http.MethodGet, "/api/strategies", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Strategies, nil
}

// GetStrategy retrieves a single strategy by ID.
func (c *Client) GetStrategy(ctx context.Context, id string) (domain.Strategy, error) {
	var env strategyEnvelope
	path := "/api/strategies/" + url.PathEscape(id)
	if err := c.do(ctx, "GetStrategy", http.MethodGet, path, nil, nil, &env); err != nil {
		return domain.Strategy{}, err
	}
	return env.Strategy, nil
}

// CreateStrategy registers a new strategy instance on the backend.
func (c *Client) CreateStrategy(ctx context.Context, req StrategyRequest) (domain.Strategy, error) {
	var env strategyEnvelope
	if err := c.do(ctx, "CreateStrategy", http.MethodPost, "/api/strategies", nil, req, &env); err != nil {
		return domain.Strategy{}, err
	}
	return env.Strategy, nil
}

// UpdateStrategy replaces a strategy's configuration.
func (c *Client) UpdateStrategy(ctx context.Context, id string, req StrategyRequest) (domain.Strategy, error) {
	var env strategyEnvelope
	path := "/api/strategies/" + url.PathEscape(id)
	if err := c.do(ctx, "UpdateStrategy", http.MethodPut, path, nil, req, &env); err != nil {
		return domain.Strategy{}, err
	}
	return env.Strategy, nil
}

// DeleteStrategy removes a strategy instance from the backend.
func (c *Client) DeleteStrategy(ctx context.Context, id string) error {
	path := "/api/strategies/" + url.PathEscape(id)
	return c.do(ctx, "DeleteStrategy", http.MethodDelete, path, nil, nil, nil)
}

// StartStrategy starts execution of a strategy on the backend.
func (c *Client) StartStrategy(ctx context.Context, id string) (domain.Strategy, error) {
	var env strategyEnvelope
	path := "/api/strategies/" + url.PathEscape(id) + "/start"
	if err := c.do(ctx, "StartStrategy", http.MethodPost, path, nil, nil, &env); err != nil {
		return domain.Strategy{}, err
	}
	return env.Strategy, nil
}

// StopStrategy stops execution of a strategy on the backend.
func (c *Client) StopStrategy(ctx context.Context, id string) (domain.Strategy, error) {
	var env strategyEnvelope
	path := "/api/strategies/" + url.PathEscape(id) + "/stop"
	if err := c.do(ctx, "StopStrategy", http.MethodPost, path, nil, nil, &env); err != nil {
		return domain.Strategy{}, err
	}
	return env.Strategy, nil
}

// GetStrategyLog retrieves the recent log lines of a strategy.
func (c *Client) GetStrategyLog(ctx context.Context, id string) ([]string, error) {
	var env strategyLogEnvelope
	path := "/api/strategies/" + url.PathEscape(id) + "/log"
	if err := c.do(ctx, "GetStrategyLog", http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Log, nil
}
