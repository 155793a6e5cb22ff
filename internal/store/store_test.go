package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/internal/domain"
)

func TestSetAccountsReplacesWholesale(t *testing.T) {
	s := New()
	s.SetAccounts([]domain.Account{
		{AccountID: "a1", Balance: decimal.NewFromInt(100)},
		{AccountID: "a2", Balance: decimal.NewFromInt(200)},
	})
	require.Len(t, s.Accounts(), 2)

	// A later snapshot fully replaces the earlier one, including removals.
	s.SetAccounts([]domain.Account{{AccountID: "a2", Balance: decimal.NewFromInt(250)}})
	got := s.Accounts()
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].AccountID)
	assert.True(t, got[0].Balance.Equal(decimal.NewFromInt(250)))

	// An empty snapshot clears the collection rather than being ignored.
	s.SetAccounts(nil)
	assert.Empty(t, s.Accounts())
}

func TestUpdateIsReplaceIfPresent(t *testing.T) {
	s := New()
	s.SetOrders([]domain.Order{
		{OrderID: "o1", Symbol: "BTCUSDT", Status: domain.OrderStatusSubmitted},
	})

	ok := s.UpdateOrder(domain.Order{OrderID: "o1", Symbol: "BTCUSDT", Status: domain.OrderStatusTraded})
	assert.True(t, ok)
	require.Len(t, s.Orders(), 1)
	assert.Equal(t, domain.OrderStatusTraded, s.Orders()[0].Status)

	// Unknown keys are a no-op; the caller decides whether to refresh.
	ok = s.UpdateOrder(domain.Order{OrderID: "o2", Status: domain.OrderStatusSubmitted})
	assert.False(t, ok)
	assert.Len(t, s.Orders(), 1)
}

func TestLastWriteWins(t *testing.T) {
	s := New()
	s.SetQuotes([]domain.Quote{{Symbol: "BTCUSDT", LastPrice: decimal.NewFromInt(100)}})

	// A push lands, then a stale-looking poll result lands after it. The
	// store has no versioning: whatever applied last is the truth, and the
	// next tick or poll corrects any momentary regression.
	s.PutQuote(domain.Quote{Symbol: "BTCUSDT", LastPrice: decimal.NewFromInt(105)})
	s.SetQuotes([]domain.Quote{{Symbol: "BTCUSDT", LastPrice: decimal.NewFromInt(103)}})

	got := s.Quotes()
	require.Len(t, got, 1)
	assert.True(t, got[0].LastPrice.Equal(decimal.NewFromInt(103)))
}

func TestPutQuoteInsertsUnknownSymbol(t *testing.T) {
	s := New()
	s.SetQuotes([]domain.Quote{{Symbol: "BTCUSDT", LastPrice: decimal.NewFromInt(100)}})

	// A fresh subscription ticks before the next snapshot; the tick must
	// not be dropped.
	s.PutQuote(domain.Quote{Symbol: "ETHUSDT", LastPrice: decimal.NewFromInt(20)})
	require.Len(t, s.Quotes(), 2)

	// Same symbol again replaces, never duplicates.
	s.PutQuote(domain.Quote{Symbol: "ETHUSDT", LastPrice: decimal.NewFromInt(21)})
	got := s.Quotes()
	require.Len(t, got, 2)
	q, ok := find(got, "ETHUSDT")
	require.True(t, ok)
	assert.True(t, q.LastPrice.Equal(decimal.NewFromInt(21)))
}

func find(quotes []domain.Quote, symbol string) (domain.Quote, bool) {
	for _, q := range quotes {
		if q.Symbol == symbol {
			return q, true
		}
	}
	return domain.Quote{}, false
}

func TestSelectionNulledWhenKeyDisappears(t *testing.T) {
	s := New()
	s.SetStrategies([]domain.Strategy{{ID: "s1", Name: "grid"}, {ID: "s2", Name: "trend"}})
	s.SelectStrategy("s1")

	sel, ok := s.SelectedStrategy()
	require.True(t, ok)
	assert.Equal(t, "grid", sel.Name)

	// The selected strategy is deleted server-side: the next snapshot
	// drops it and the selection must not dangle.
	s.SetStrategies([]domain.Strategy{{ID: "s2", Name: "trend"}})
	_, ok = s.SelectedStrategy()
	assert.False(t, ok)

	// Surviving selections track the record, not a stale copy.
	s.SelectStrategy("s2")
	s.UpdateStrategy(domain.Strategy{ID: "s2", Name: "trend", Status: domain.StrategyStatusRunning})
	sel, ok = s.SelectedStrategy()
	require.True(t, ok)
	assert.Equal(t, domain.StrategyStatusRunning, sel.Status)
}

func TestAppendTradeDeduplicates(t *testing.T) {
	s := New()
	s.SetTrades([]domain.Trade{{TradeID: "t1", Symbol: "BTCUSDT"}})

	s.AppendTrade(domain.Trade{TradeID: "t2", Symbol: "BTCUSDT"})
	assert.Len(t, s.Trades(), 2)

	// A push racing the snapshot re-delivers t2; it must replace, not double.
	s.AppendTrade(domain.Trade{TradeID: "t2", Symbol: "BTCUSDT", Volume: decimal.NewFromInt(3)})
	got := s.Trades()
	require.Len(t, got, 2)
	assert.True(t, got[1].Volume.Equal(decimal.NewFromInt(3)))
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	s.SetPositions([]domain.Position{{Symbol: "BTCUSDT"}})

	got := s.Positions()
	got[0].Symbol = "MUTATED"
	assert.Equal(t, "BTCUSDT", s.Positions()[0].Symbol)
}

func TestWatchCoalesces(t *testing.T) {
	s := New()
	ch := s.Watch()
	defer s.Unwatch(ch)

	// Many mutations with no reader in between still leave exactly one
	// pending signal; a mutation never blocks on a slow watcher.
	for i := 0; i < 10; i++ {
		s.SetConnected(i%2 == 0)
	}

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending change signal")
	}
	select {
	case <-ch:
		t.Fatal("expected signals to coalesce to one")
	default:
	}
}

func TestTransientState(t *testing.T) {
	s := New()
	assert.False(t, s.Connected())
	assert.False(t, s.Loading())
	assert.Empty(t, s.Error())

	s.SetConnected(true)
	s.SetLoading(true)
	s.SetError("boom")
	assert.True(t, s.Connected())
	assert.True(t, s.Loading())
	assert.Equal(t, "boom", s.Error())

	s.ClearError()
	assert.Empty(t, s.Error())
}

func TestReset(t *testing.T) {
	s := New()
	s.SetAccounts([]domain.Account{{AccountID: "a1"}})
	s.SetQuotes([]domain.Quote{{Symbol: "BTCUSDT"}})
	s.SelectQuote("BTCUSDT")
	s.SetConnected(true)
	s.SetError("boom")

	s.Reset()
	assert.Empty(t, s.Accounts())
	assert.Empty(t, s.Quotes())
	_, ok := s.SelectedQuote()
	assert.False(t, ok)
	assert.False(t, s.Connected())
	assert.Empty(t, s.Error())
}
