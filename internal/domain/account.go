package domain

import "github.com/shopspring/decimal"

// Account is a trading account as reported by the backend. Keyed by
// AccountID; the record is replaced wholesale on refresh or push.
type Account struct {
	AccountID string          `json:"accountid"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
	Currency  string          `json:"currency"`
}

// Key returns the natural identifier of the account.
func (a Account) Key() string { return a.AccountID }
