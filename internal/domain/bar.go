package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one candlestick of historical market data pulled through the
// data endpoints and cached locally.
type Bar struct {
	Symbol   string          `json:"symbol"`
	Exchange string          `json:"exchange"`
	Interval string          `json:"interval"`
	OpenTime time.Time       `json:"open_time"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// Tick is one raw tick of historical market data.
type Tick struct {
	Symbol    string          `json:"symbol"`
	Exchange  string          `json:"exchange"`
	Timestamp time.Time       `json:"timestamp"`
	LastPrice decimal.Decimal `json:"last_price"`
	Volume    decimal.Decimal `json:"volume"`
	BidPrice1 decimal.Decimal `json:"bid_price_1"`
	AskPrice1 decimal.Decimal `json:"ask_price_1"`
}
