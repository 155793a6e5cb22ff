package domain

import "github.com/shopspring/decimal"

// Position is an open position held on the backend. Keyed by Symbol; the
// backend reports one row per (symbol, direction).
type Position struct {
	Symbol        string          `json:"symbol"`
	Direction     Direction       `json:"direction"`
	Volume        decimal.Decimal `json:"volume"`
	OpenPrice     decimal.Decimal `json:"open_price"`
	LastPrice     decimal.Decimal `json:"last_price"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	PnlRatio      decimal.Decimal `json:"pnl_ratio"`
	Margin        decimal.Decimal `json:"margin"`
}

// Key returns the natural identifier of the position.
func (p Position) Key() string { return p.Symbol }
