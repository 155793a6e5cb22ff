package domain

import "github.com/shopspring/decimal"

// Quote is a level-1 market snapshot for one symbol. Quotes are the
// highest-churn entity: they arrive both from push ticks and from the
// timed full-collection poll, through the same store path.
type Quote struct {
	Symbol      string          `json:"symbol"`
	Exchange    string          `json:"exchange"`
	LastPrice   decimal.Decimal `json:"last_price"`
	Change      decimal.Decimal `json:"change"`
	ChangeValue decimal.Decimal `json:"change_value"`
	Volume      decimal.Decimal `json:"volume"`
	BidPrice1   decimal.Decimal `json:"bid_price_1"`
	BidVolume1  decimal.Decimal `json:"bid_volume_1"`
	AskPrice1   decimal.Decimal `json:"ask_price_1"`
	AskVolume1  decimal.Decimal `json:"ask_volume_1"`
	Status      string          `json:"status"`
	Timestamp   string          `json:"timestamp"`
}

// Key returns the natural identifier of the quote.
func (q Quote) Key() string { return q.Symbol }
