package domain

// Direction represents the side of a position or order (long or short).
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// IsValid reports whether the direction is one of the known values.
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Offset distinguishes opening from closing trades.
type Offset string

const (
	OffsetOpen  Offset = "open"
	OffsetClose Offset = "close"
)

// IsValid reports whether the offset is one of the known values.
func (o Offset) IsValid() bool {
	return o == OffsetOpen || o == OffsetClose
}

// OrderType is the execution type requested when placing an order.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// OrderStatus is the client-observed projection of the server's order state.
// The client never transitions status locally; whole records are replaced
// from a pull or push and the last write observed by the store wins.
type OrderStatus string

const (
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusTraded    OrderStatus = "traded"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// IsTerminal reports whether the order can no longer change on the server.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusTraded || s == OrderStatusCancelled || s == OrderStatusRejected
}

// StrategyStatus mirrors the server's strategy lifecycle
// (created -> running <-> stopped). The client reflects whatever status
// string the server returns and does not enforce transitions.
type StrategyStatus string

const (
	StrategyStatusCreated StrategyStatus = "created"
	StrategyStatusRunning StrategyStatus = "running"
	StrategyStatusStopped StrategyStatus = "stopped"
)

// BacktestStatus mirrors the server's backtest lifecycle
// (queued/running -> completed/failed). Backtests are poll-driven; staleness
// up to the poll interval is accepted.
type BacktestStatus string

const (
	BacktestStatusQueued    BacktestStatus = "queued"
	BacktestStatusRunning   BacktestStatus = "running"
	BacktestStatusCompleted BacktestStatus = "completed"
	BacktestStatusFailed    BacktestStatus = "failed"
)

// IsFinished reports whether the backtest reached a terminal state.
func (s BacktestStatus) IsFinished() bool {
	return s == BacktestStatusCompleted || s == BacktestStatusFailed
}
