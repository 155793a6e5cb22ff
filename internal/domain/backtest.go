package domain

import "github.com/shopspring/decimal"

// Backtest is a server-side backtest run and its result metrics. Long
// running; the client polls for completion (there is no backtest push
// channel).
type Backtest struct {
	ID           string          `json:"id"`
	StrategyName string          `json:"strategy_name"`
	Symbol       string          `json:"symbol"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Status       BacktestStatus  `json:"status"`
	TotalPnl     decimal.Decimal `json:"total_pnl"`
	ReturnRate   decimal.Decimal `json:"return_rate"`
	MaxDrawdown  decimal.Decimal `json:"max_drawdown"`
	WinRate      decimal.Decimal `json:"win_rate"`
	SharpeRatio  decimal.Decimal `json:"sharpe_ratio"`
}

// Key returns the natural identifier of the backtest.
func (b Backtest) Key() string { return b.ID }
