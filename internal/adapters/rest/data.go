package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"tradeconsole/internal/domain"
)

type barsEnvelope struct {
	Bars []domain.Bar `json:"bars"`
}

type ticksEnvelope struct {
	Ticks []domain.Tick `json:"ticks"`
}

type messageEnvelope struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// MarketDataParams selects a slice of historical market data.
type MarketDataParams struct {
	Symbol   string
	Exchange string
	Interval string // Bars only
	Start    string
	End      string
}

func (p MarketDataParams) query() url.Values {
	q := url.Values{}
	q.Set("symbol", p.Symbol)
	if p.Exchange != "" {
		q.Set("exchange", p.Exchange)
	}
	if p.Interval != "" {
		q.Set("interval", p.Interval)
	}
	if p.Start != "" {
		q.Set("start", p.Start)
	}
	if p.End != "" {
		q.Set("end", p.End)
	}
	return q
}

// ExportRequest asks the backend to encode a slice of market data.
type ExportRequest struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange,omitempty"`
	Interval string `json:"interval,omitempty"`
	Format   string `json:"format"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// CleanParams selects which server-side market data to remove.
type CleanParams struct {
	Symbol   string `json:"symbol,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Interval string `json:"interval,omitempty"`
	All      bool   `json:"all,omitempty"`
}

// GetBars retrieves historical candlesticks.
func (c *Client) GetBars(ctx context.Context, p MarketDataParams) ([]domain.Bar, error) {
	var env barsEnvelope
	if err := c.do(ctx, "GetBars", http.MethodGet, "/api/data/bars", p.query(), nil, &env); err != nil {
		return nil, err
	}
	return env.Bars, nil
}

// GetTicks retrieves historical ticks.
func (c *Client) GetTicks(ctx context.Context, p MarketDataParams) ([]domain.Tick, error) {
	var env ticksEnvelope
	if err := c.do(ctx, "GetTicks", http.MethodGet, "/api/data/ticks", p.query(), nil, &env); err != nil {
		return nil, err
	}
	return env.Ticks, nil
}

// ImportData uploads a market data file (multipart) for server-side ingestion.
func (c *Client) ImportData(ctx context.Context, file io.Reader, filename, symbol, exchange, interval string) (string, error) {
	op := "ImportData"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%s failed: %w", op, err)
	}
	_ = w.WriteField("symbol", symbol)
	if exchange != "" {
		_ = w.WriteField("exchange", exchange)
	}
	if interval != "" {
		_ = w.WriteField("interval", interval)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%s failed: %w", op, err)
	}

	resp, err := c.send(ctx, op, http.MethodPost, "/api/data/import", nil, &buf, w.FormDataContentType())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var env messageEnvelope
	if err := decodeBody(resp.Body, &env); err != nil {
		return "", c.normalize(ctx, err, op)
	}
	return env.Message, nil
}

// ExportData asks the backend to encode market data and returns the binary
// response body. The caller owns closing the reader.
func (c *Client) ExportData(ctx context.Context, req ExportRequest) (io.ReadCloser, error) {
	resp, err := c.send(ctx, "ExportData", http.MethodPost, "/api/data/export", nil, req, "application/json")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CleanData removes server-side market data and reports how many rows went.
func (c *Client) CleanData(ctx context.Context, p CleanParams) (int64, string, error) {
	var env messageEnvelope
	if err := c.do(ctx, "CleanData", http.MethodDelete, "/api/data/clean", nil, p, &env); err != nil {
		return 0, "", err
	}
	return env.Count, env.Message, nil
}
