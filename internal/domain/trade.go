package domain

import "github.com/shopspring/decimal"

// Trade is a fill reported by the backend. Keyed by TradeID and
// append-only from the client's point of view.
type Trade struct {
	TradeID    string          `json:"tradeid"`
	OrderID    string          `json:"orderid"`
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"direction"`
	Offset     Offset          `json:"offset"`
	Price      decimal.Decimal `json:"price"`
	Volume     decimal.Decimal `json:"volume"`
	Commission decimal.Decimal `json:"commission"`
	TradeTime  string          `json:"trade_time"`
}

// Key returns the natural identifier of the trade.
func (t Trade) Key() string { return t.TradeID }
