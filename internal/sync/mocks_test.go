package sync

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	gosync "sync"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
)

// Mock implementations

type mockLogger struct {
	mu        gosync.Mutex
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	m.infoMsgs = append(m.infoMsgs, msg)
	m.mu.Unlock()
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	m.warnMsgs = append(m.warnMsgs, msg)
	m.mu.Unlock()
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	m.errorMsgs = append(m.errorMsgs, msg)
	m.mu.Unlock()
}

func (m *mockLogger) warns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warnMsgs...)
}

func (m *mockLogger) errs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errorMsgs...)
}

// mockBackend is a canned-response backend covering every reconciler
// interface. Per-method call counters let tests assert how often the wire
// was hit; the counters are mutex-guarded because push handlers may call
// from other goroutines.
type mockBackend struct {
	mu    gosync.Mutex
	calls map[string]int

	accounts    []domain.Account
	accountsErr error
	account     domain.Account
	accountErr  error

	positions    []domain.Position
	positionsErr error
	position     domain.Position

	quotes    []domain.Quote
	quotesErr error
	quote     domain.Quote
	quoteErr  error
	subErr    error

	orders       []domain.Order
	ordersErr    error
	placedOrder  domain.Order
	placeErr     error
	cancelErr    error
	trades       []domain.Trade
	tradesErr    error
	ordersCalled chan struct{} // signaled on every GetOrders, when non-nil

	strategies    []domain.Strategy
	strategiesErr error
	strategy      domain.Strategy
	strategyErr   error
	logLines      []string

	backtests    []domain.Backtest
	backtestsErr error
	backtest     domain.Backtest
	backtestErr  error
	chart        json.RawMessage

	bars  []domain.Bar
	ticks []domain.Tick

	healthErr error
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: make(map[string]int)}
}

func (m *mockBackend) bump(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

func (m *mockBackend) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBackend) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	m.bump("GetAccounts")
	return m.accounts, m.accountsErr
}

func (m *mockBackend) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	m.bump("GetAccount")
	return m.account, m.accountErr
}

func (m *mockBackend) RefreshAccount(ctx context.Context, accountID string) (domain.Account, error) {
	m.bump("RefreshAccount")
	return m.account, m.accountErr
}

func (m *mockBackend) GetPositions(ctx context.Context) ([]domain.Position, error) {
	m.bump("GetPositions")
	return m.positions, m.positionsErr
}

func (m *mockBackend) GetPosition(ctx context.Context, symbol string) (domain.Position, error) {
	m.bump("GetPosition")
	return m.position, nil
}

func (m *mockBackend) RefreshPosition(ctx context.Context, symbol string) (domain.Position, error) {
	m.bump("RefreshPosition")
	return m.position, nil
}

func (m *mockBackend) GetQuotes(ctx context.Context) ([]domain.Quote, error) {
	m.bump("GetQuotes")
	return m.quotes, m.quotesErr
}

func (m *mockBackend) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	m.bump("GetQuote")
	return m.quote, m.quoteErr
}

func (m *mockBackend) SubscribeQuote(ctx context.Context, symbol, exchange string) error {
	m.bump("SubscribeQuote")
	return m.subErr
}

func (m *mockBackend) UnsubscribeQuote(ctx context.Context, symbol string) error {
	m.bump("UnsubscribeQuote")
	return m.subErr
}

func (m *mockBackend) GetOrders(ctx context.Context) ([]domain.Order, error) {
	m.bump("GetOrders")
	if m.ordersCalled != nil {
		select {
		case m.ordersCalled <- struct{}{}:
		default:
		}
	}
	return m.orders, m.ordersErr
}

func (m *mockBackend) PlaceOrder(ctx context.Context, req rest.PlaceOrderRequest) (domain.Order, error) {
	m.bump("PlaceOrder")
	return m.placedOrder, m.placeErr
}

func (m *mockBackend) CancelOrder(ctx context.Context, orderID string) error {
	m.bump("CancelOrder")
	return m.cancelErr
}

func (m *mockBackend) GetTrades(ctx context.Context) ([]domain.Trade, error) {
	m.bump("GetTrades")
	return m.trades, m.tradesErr
}

func (m *mockBackend) GetStrategies(ctx context.Context) ([]domain.Strategy, error) {
	m.bump("GetStrategies")
	return m.strategies, m.strategiesErr
}

func (m *mockBackend) GetStrategy(ctx context.Context, id string) (domain.Strategy, error) {
	m.bump("GetStrategy")
	return m.strategy, m.strategyErr
}

func (m *mockBackend) CreateStrategy(ctx context.Context, req rest.StrategyRequest) (domain.Strategy, error) {
	m.bump("CreateStrategy")
	return m.strategy, m.strategyErr
}

func (m *mockBackend) UpdateStrategy(ctx context.Context, id string, req rest.StrategyRequest) (domain.Strategy, error) {
	m.bump("UpdateStrategy")
	return m.strategy, m.strategyErr
}

func (m *mockBackend) DeleteStrategy(ctx context.Context, id string) error {
	m.bump("DeleteStrategy")
	return m.strategyErr
}

func (m *mockBackend) StartStrategy(ctx context.Context, id string) (domain.Strategy, error) {
	m.bump("StartStrategy")
	return m.strategy, m.strategyErr
}

func (m *mockBackend) StopStrategy(ctx context.Context, id string) (domain.Strategy, error) {
	m.bump("StopStrategy")
	return m.strategy, m.strategyErr
}

func (m *mockBackend) GetStrategyLog(ctx context.Context, id string) ([]string, error) {
	m.bump("GetStrategyLog")
	return m.logLines, m.strategyErr
}

func (m *mockBackend) GetBacktests(ctx context.Context) ([]domain.Backtest, error) {
	m.bump("GetBacktests")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backtests, m.backtestsErr
}

func (m *mockBackend) GetBacktest(ctx context.Context, id string) (domain.Backtest, error) {
	m.bump("GetBacktest")
	return m.backtest, m.backtestErr
}

func (m *mockBackend) RunBacktest(ctx context.Context, req rest.RunBacktestRequest) (domain.Backtest, error) {
	m.bump("RunBacktest")
	return m.backtest, m.backtestErr
}

func (m *mockBackend) StopBacktest(ctx context.Context, id string) error {
	m.bump("StopBacktest")
	return m.backtestErr
}

func (m *mockBackend) GetBacktestResults(ctx context.Context, id string) (domain.Backtest, error) {
	m.bump("GetBacktestResults")
	return m.backtest, m.backtestErr
}

func (m *mockBackend) GetBacktestChart(ctx context.Context, id string) (json.RawMessage, error) {
	m.bump("GetBacktestChart")
	return m.chart, m.backtestErr
}

func (m *mockBackend) GetBars(ctx context.Context, p rest.MarketDataParams) ([]domain.Bar, error) {
	m.bump("GetBars")
	return m.bars, nil
}

func (m *mockBackend) GetTicks(ctx context.Context, p rest.MarketDataParams) ([]domain.Tick, error) {
	m.bump("GetTicks")
	return m.ticks, nil
}

func (m *mockBackend) ImportData(ctx context.Context, file io.Reader, filename, symbol, exchange, interval string) (string, error) {
	m.bump("ImportData")
	return "imported", nil
}

func (m *mockBackend) ExportData(ctx context.Context, req rest.ExportRequest) (io.ReadCloser, error) {
	m.bump("ExportData")
	return io.NopCloser(strings.NewReader("symbol,open,close\n")), nil
}

func (m *mockBackend) CleanData(ctx context.Context, p rest.CleanParams) (int64, string, error) {
	m.bump("CleanData")
	return 0, "", nil
}

func (m *mockBackend) Health(ctx context.Context) error {
	m.bump("Health")
	return m.healthErr
}

// mockPushConn is an in-memory push transport: tests register handlers
// through the bus and inject events directly.
type mockPushConn struct {
	mu       gosync.Mutex
	handlers map[string]ports.PushHandler
	emitted  []string
	stateFn  func(ports.ConnState, error)
}

func newMockPushConn() *mockPushConn {
	return &mockPushConn{handlers: make(map[string]ports.PushHandler)}
}

func (m *mockPushConn) Connect(ctx context.Context) error { return nil }
func (m *mockPushConn) Disconnect()                       {}

func (m *mockPushConn) Emit(event string, payload interface{}) error {
	m.mu.Lock()
	m.emitted = append(m.emitted, event)
	m.mu.Unlock()
	return nil
}

func (m *mockPushConn) On(event string, handler ports.PushHandler) func() {
	m.mu.Lock()
	m.handlers[event] = handler
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.handlers, event)
		m.mu.Unlock()
	}
}

func (m *mockPushConn) OnStateChange(fn func(ports.ConnState, error)) {
	m.mu.Lock()
	m.stateFn = fn
	m.mu.Unlock()
}

func (m *mockPushConn) push(event string, data string) {
	m.mu.Lock()
	h := m.handlers[event]
	m.mu.Unlock()
	if h != nil {
		h(json.RawMessage(data))
	}
}

func (m *mockPushConn) emittedEvents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.emitted...)
}

func (m *mockPushConn) fireState(state ports.ConnState, err error) {
	m.mu.Lock()
	fn := m.stateFn
	m.mu.Unlock()
	if fn != nil {
		fn(state, err)
	}
}
