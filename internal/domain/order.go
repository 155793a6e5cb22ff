package domain

import "github.com/shopspring/decimal"

// Order is a working or finished order as reported by the backend.
// Keyed by OrderID; the client never creates or mutates one locally.
type Order struct {
	OrderID   string          `json:"orderid"`
	Symbol    string          `json:"symbol"`
	Direction Direction       `json:"direction"`
	Offset    Offset          `json:"offset"`
	Volume    decimal.Decimal `json:"volume"`
	Traded    decimal.Decimal `json:"traded"`
	Price     decimal.Decimal `json:"price"`
	Status    OrderStatus     `json:"status"`
	OrderTime string          `json:"order_time"`
}

// Key returns the natural identifier of the order.
func (o Order) Key() string { return o.OrderID }
