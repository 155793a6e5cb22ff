package rest

import (
	"context"
	"net/http"
	"net/url"

	"tradeconsole/internal/domain"
)

type quotesEnvelope struct {
	Quotes []domain.Quote `json:"quotes"`
}

type quoteEnvelope struct {
	Quote   domain.Quote `json:"quote"`
	Message string       `json:"message"`
}

type subscribeRequest struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange,omitempty"`
}

// GetQuotes pulls the full quote collection snapshot.
func (c *Client) GetQuotes(ctx context.Context) ([]domain.Quote, error) {
	var env quotesEnvelope
	if err := c.do(ctx, "GetQuotes", http.MethodGet, "/api/quotes", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Quotes, nil
}

// GetQuote retrieves a single quote by symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	var env quoteEnvelope
	path := "/api/quotes/" + url.PathEscape(symbol)
	if err := c.do(ctx, "GetQuote", http.MethodGet, path, nil, nil, &env); err != nil {
		return domain.Quote{}, err
	}
	return env.Quote, nil
}

// SubscribeQuote registers interest in tick pushes for a symbol.
func (c *Client) SubscribeQuote(ctx context.Context, symbol, exchange string) error {
	req := subscribeRequest{Symbol: symbol, Exchange: exchange}
	return c.do(ctx, "SubscribeQuote", http.MethodPost, "/api/quotes/subscribe", nil, req, nil)
}

// UnsubscribeQuote removes interest in tick pushes for a symbol. The backend
// treats an unknown subscription as success, so repeating the call is safe.
func (c *Client) UnsubscribeQuote(ctx context.Context, symbol string) error {
	req := subscribeRequest{Symbol: symbol}
	return c.do(ctx, "UnsubscribeQuote", http.MethodPost, "/api/quotes/unsubscribe", nil, req, nil)
}
