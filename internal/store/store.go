// Package store holds the authoritative client-side copies of backend
// entities plus transient UI state. It is the single reconciliation point:
// pull snapshots and push updates both land here, and the last write applied
// wins regardless of source.
package store

import (
	"sync"

	"tradeconsole/internal/domain"
)

// Store is a single mutable container with typed read projections and a
// fixed set of mutation entry points. Reads return copies. Update methods
// are strictly replace-if-present: only Set (wholesale) mutations introduce
// new keys, with the one documented exception of PutQuote.
//
// Selections are weak references held by key: every write to a collection
// re-resolves the matching selection, and a key that disappears from its
// collection nulls the selection rather than leaving it dangling.
type Store struct {
	mu sync.RWMutex

	accounts   []domain.Account
	positions  []domain.Position
	orders     []domain.Order
	quotes     []domain.Quote
	strategies []domain.Strategy
	backtests  []domain.Backtest
	trades     []domain.Trade

	selectedAccount  string
	selectedPosition string
	selectedQuote    string
	selectedStrategy string
	selectedBacktest string

	connected bool
	loading   bool
	errMsg    string

	watchers []chan struct{}
}

// New creates an empty store.
func New() *Store { return &Store{} }

// Watch returns a channel that receives a coalesced signal after every
// mutation. The channel has capacity one; a slow reader misses intermediate
// signals, never mutations. Release with Unwatch.
func (s *Store) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()
	return ch
}

// Unwatch removes a channel previously returned by Watch.
func (s *Store) Unwatch(ch <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.watchers {
		if w == ch {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			return
		}
	}
}

// notifyLocked signals all watchers. Callers hold s.mu.
func (s *Store) notifyLocked() {
	for _, w := range s.watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

// --- Accounts ---

// Accounts returns a copy of the account slice.
func (s *Store) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Account(nil), s.accounts...)
}

// SetAccounts replaces the account collection wholesale.
func (s *Store) SetAccounts(accounts []domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append([]domain.Account(nil), accounts...)
	if s.selectedAccount != "" && findAccount(s.accounts, s.selectedAccount) < 0 {
		s.selectedAccount = ""
	}
	s.notifyLocked()
}

// UpdateAccount replaces the matching account and reports whether a match
// existed. Unknown keys are a no-op.
func (s *Store) UpdateAccount(a domain.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := findAccount(s.accounts, a.AccountID)
	if i < 0 {
		return false
	}
	s.accounts[i] = a
	s.notifyLocked()
	return true
}

// SelectAccount marks an account selected by key; empty clears.
func (s *Store) SelectAccount(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedAccount = accountID
	s.notifyLocked()
}

// SelectedAccount resolves the current selection, if any.
func (s *Store) SelectedAccount() (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findAccount(s.accounts, s.selectedAccount); s.selectedAccount != "" && i >= 0 {
		return s.accounts[i], true
	}
	return domain.Account{}, false
}

// --- Positions ---

// Positions returns a copy of the position slice.
func (s *Store) Positions() []domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Position(nil), s.positions...)
}

// SetPositions replaces the position collection wholesale.
func (s *Store) SetPositions(positions []domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append([]domain.Position(nil), positions...)
	if s.selectedPosition != "" && findPosition(s.positions, s.selectedPosition) < 0 {
		s.selectedPosition = ""
	}
	s.notifyLocked()
}

// UpdatePosition replaces the matching position; no-op for unknown symbols.
func (s *Store) UpdatePosition(p domain.Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := findPosition(s.positions, p.Symbol)
	if i < 0 {
		return false
	}
	s.positions[i] = p
	s.notifyLocked()
	return true
}

// SelectPosition marks a position selected by key; empty clears.
func (s *Store) SelectPosition(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedPosition = symbol
	s.notifyLocked()
}

// SelectedPosition resolves the current selection, if any.
func (s *Store) SelectedPosition() (domain.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findPosition(s.positions, s.selectedPosition); s.selectedPosition != "" && i >= 0 {
		return s.positions[i], true
	}
	return domain.Position{}, false
}

// --- Orders ---

// Orders returns a copy of the order slice.
func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Order(nil), s.orders...)
}

// SetOrders replaces the order collection wholesale.
func (s *Store) SetOrders(orders []domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append([]domain.Order(nil), orders...)
	s.notifyLocked()
}

// UpdateOrder replaces the matching order; no-op for unknown IDs. The
// returned flag lets the reconciler promote unknown-order pushes to a
// collection refresh instead of silently dropping them.
func (s *Store) UpdateOrder(o domain.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].OrderID == o.OrderID {
			s.orders[i] = o
			s.notifyLocked()
			return true
		}
	}
	return false
}

// --- Quotes ---

// Quotes returns a copy of the quote slice.
func (s *Store) Quotes() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Quote(nil), s.quotes...)
}

// SetQuotes replaces the quote collection wholesale.
func (s *Store) SetQuotes(quotes []domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append([]domain.Quote(nil), quotes...)
	if s.selectedQuote != "" && findQuote(s.quotes, s.selectedQuote) < 0 {
		s.selectedQuote = ""
	}
	s.notifyLocked()
}

// UpdateQuote replaces the matching quote; no-op for unknown symbols.
func (s *Store) UpdateQuote(q domain.Quote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := findQuote(s.quotes, q.Symbol)
	if i < 0 {
		return false
	}
	s.quotes[i] = q
	s.notifyLocked()
	return true
}

// PutQuote inserts or replaces a quote. Quotes are the one entity whose
// pushes may legally arrive before the first snapshot (a fresh subscription
// ticks immediately), so unknown symbols are promoted to inserts here.
func (s *Store) PutQuote(q domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := findQuote(s.quotes, q.Symbol); i >= 0 {
		s.quotes[i] = q
	} else {
		s.quotes = append(s.quotes, q)
	}
	s.notifyLocked()
}

// SelectQuote marks a quote selected by key; empty clears.
func (s *Store) SelectQuote(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedQuote = symbol
	s.notifyLocked()
}

// SelectedQuote resolves the current selection, if any.
func (s *Store) SelectedQuote() (domain.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findQuote(s.quotes, s.selectedQuote); s.selectedQuote != "" && i >= 0 {
		return s.quotes[i], true
	}
	return domain.Quote{}, false
}

// --- Strategies ---

// Strategies returns a copy of the strategy slice.
func (s *Store) Strategies() []domain.Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Strategy(nil), s.strategies...)
}

// SetStrategies replaces the strategy collection wholesale.
func (s *Store) SetStrategies(strategies []domain.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies = append([]domain.Strategy(nil), strategies...)
	if s.selectedStrategy != "" && findStrategy(s.strategies, s.selectedStrategy) < 0 {
		s.selectedStrategy = ""
	}
	s.notifyLocked()
}

// UpdateStrategy replaces the matching strategy; no-op for unknown IDs.
func (s *Store) UpdateStrategy(st domain.Strategy) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := findStrategy(s.strategies, st.ID)
	if i < 0 {
		return false
	}
	s.strategies[i] = st
	s.notifyLocked()
	return true
}

// SelectStrategy marks a strategy selected by key; empty clears.
func (s *Store) SelectStrategy(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedStrategy = id
	s.notifyLocked()
}

// SelectedStrategy resolves the current selection, if any.
func (s *Store) SelectedStrategy() (domain.Strategy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findStrategy(s.strategies, s.selectedStrategy); s.selectedStrategy != "" && i >= 0 {
		return s.strategies[i], true
	}
	return domain.Strategy{}, false
}

// --- Backtests ---

// Backtests returns a copy of the backtest slice.
func (s *Store) Backtests() []domain.Backtest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Backtest(nil), s.backtests...)
}

// SetBacktests replaces the backtest collection wholesale.
func (s *Store) SetBacktests(backtests []domain.Backtest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backtests = append([]domain.Backtest(nil), backtests...)
	if s.selectedBacktest != "" && findBacktest(s.backtests, s.selectedBacktest) < 0 {
		s.selectedBacktest = ""
	}
	s.notifyLocked()
}

// UpdateBacktest replaces the matching backtest; no-op for unknown IDs.
func (s *Store) UpdateBacktest(b domain.Backtest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := findBacktest(s.backtests, b.ID)
	if i < 0 {
		return false
	}
	s.backtests[i] = b
	s.notifyLocked()
	return true
}

// SelectBacktest marks a backtest selected by key; empty clears.
func (s *Store) SelectBacktest(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedBacktest = id
	s.notifyLocked()
}

// SelectedBacktest resolves the current selection, if any.
func (s *Store) SelectedBacktest() (domain.Backtest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findBacktest(s.backtests, s.selectedBacktest); s.selectedBacktest != "" && i >= 0 {
		return s.backtests[i], true
	}
	return domain.Backtest{}, false
}

// --- Trades ---

// Trades returns a copy of the trade slice.
func (s *Store) Trades() []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Trade(nil), s.trades...)
}

// SetTrades replaces the trade collection wholesale.
func (s *Store) SetTrades(trades []domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append([]domain.Trade(nil), trades...)
	s.notifyLocked()
}

// AppendTrade appends a newly pushed fill. Duplicate trade IDs are replaced
// in place so a push racing a snapshot never doubles a row.
func (s *Store) AppendTrade(t domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.trades {
		if s.trades[i].TradeID == t.TradeID {
			s.trades[i] = t
			s.notifyLocked()
			return
		}
	}
	s.trades = append(s.trades, t)
	s.notifyLocked()
}

// --- Transient UI state ---

// Connected reports the push channel indicator.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SetConnected updates the push channel indicator.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	s.notifyLocked()
}

// Loading reports whether a snapshot pull is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLoading updates the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
	s.notifyLocked()
}

// Error returns the current user-facing error message, empty when clear.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// SetError writes the user-facing error message.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
	s.notifyLocked()
}

// ClearError clears the user-facing error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
	s.notifyLocked()
}

// Reset drops all entity state, selections and transient flags.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = nil
	s.positions = nil
	s.orders = nil
	s.quotes = nil
	s.strategies = nil
	s.backtests = nil
	s.trades = nil
	s.selectedAccount = ""
	s.selectedPosition = ""
	s.selectedQuote = ""
	s.selectedStrategy = ""
	s.selectedBacktest = ""
	s.connected = false
	s.loading = false
	s.errMsg = ""
	s.notifyLocked()
}

// --- Key lookups ---

func findAccount(xs []domain.Account, key string) int {
	for i := range xs {
		if xs[i].AccountID == key {
			return i
		}
	}
	return -1
}

func findPosition(xs []domain.Position, key string) int {
	for i := range xs {
		if xs[i].Symbol == key {
			return i
		}
	}
	return -1
}

func findQuote(xs []domain.Quote, key string) int {
	for i := range xs {
		if xs[i].Symbol == key {
			return i
		}
	}
	return -1
}

func findStrategy(xs []domain.Strategy, key string) int {
	for i := range xs {
		if xs[i].ID == key {
			return i
		}
	}
	return -1
}

func findBacktest(xs []domain.Backtest, key string) int {
	for i := range xs {
		if xs[i].ID == key {
			return i
		}
	}
	return -1
}
