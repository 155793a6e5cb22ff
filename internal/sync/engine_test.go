package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

func newTestEngine(t *testing.T, api *mockBackend, push *mockPushConn) (*Engine, *store.Store) {
	t.Helper()
	st := store.New()
	e := NewEngine(api, push, nil, st, &mockLogger{}, Config{})
	return e, st
}

func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestEngineStartPullsAllSnapshots(t *testing.T) {
	api := newMockBackend()
	api.accounts = []domain.Account{{AccountID: "a1"}}
	api.quotes = []domain.Quote{{Symbol: "BTCUSDT"}}
	push := newMockPushConn()
	e, st := newTestEngine(t, api, push)

	require.NoError(t, e.Start(context.Background()))
	defer e.Stop()

	waitUntil(t, func() bool {
		return api.count("GetAccounts") >= 1 &&
			api.count("GetPositions") >= 1 &&
			api.count("GetQuotes") >= 1 &&
			api.count("GetOrders") >= 1 &&
			api.count("GetTrades") >= 1 &&
			api.count("GetStrategies") >= 1 &&
			api.count("GetBacktests") >= 1
	}, "initial refresh never covered all snapshots")

	waitUntil(t, func() bool { return len(st.Accounts()) == 1 }, "accounts never landed in the store")
}

func TestEngineConnectionStateReachesStore(t *testing.T) {
	api := newMockBackend()
	push := newMockPushConn()
	e, st := newTestEngine(t, api, push)

	require.NoError(t, e.Start(context.Background()))
	defer e.Stop()

	push.fireState(ports.ConnStateConnected, nil)
	assert.True(t, st.Connected())

	push.fireState(ports.ConnStateDisconnected, errors.New("read: EOF"))
	assert.False(t, st.Connected())

	push.fireState(ports.ConnStateConnectError, errors.New("dial refused"))
	assert.False(t, st.Connected())
	assert.NotEmpty(t, st.Error())
}

func TestEngineReconnectReplaysAndRefreshes(t *testing.T) {
	api := newMockBackend()
	push := newMockPushConn()
	e, _ := newTestEngine(t, api, push)

	require.NoError(t, e.Start(context.Background()))
	defer e.Stop()

	require.NoError(t, e.Quotes.Subscribe(context.Background(), "BTCUSDT", ""))

	push.fireState(ports.ConnStateConnected, nil)
	baselineFetches := api.count("GetAccounts")
	baselineEmits := len(push.emittedEvents())

	// Drop and reconnect: the engine must replay the quote subscription and
	// re-pull snapshots to cover pushes missed while down.
	push.fireState(ports.ConnStateDisconnected, errors.New("gone"))
	push.fireState(ports.ConnStateConnected, nil)

	waitUntil(t, func() bool {
		return len(push.emittedEvents()) > baselineEmits
	}, "quote subscription was not replayed after reconnect")
	waitUntil(t, func() bool {
		return api.count("GetAccounts") > baselineFetches
	}, "snapshots were not re-pulled after reconnect")
}

func TestEngineWaitReady(t *testing.T) {
	api := newMockBackend()
	push := newMockPushConn()
	e, _ := newTestEngine(t, api, push)

	require.NoError(t, e.WaitReady(context.Background()))

	api.healthErr = errors.New("503")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.Error(t, e.WaitReady(ctx), "an unhealthy backend times the gate out")
}

func TestEnginePushHandlersBound(t *testing.T) {
	api := newMockBackend()
	api.accounts = []domain.Account{{AccountID: "a1"}}
	push := newMockPushConn()
	e, st := newTestEngine(t, api, push)

	require.NoError(t, e.Start(context.Background()))
	defer e.Stop()
	waitUntil(t, func() bool { return len(st.Accounts()) == 1 }, "initial account snapshot missing")

	// A push through the transport lands in the store via the bus binding.
	push.push("account", `{"accountid": "a1", "currency": "USDT"}`)
	waitUntil(t, func() bool { return st.Accounts()[0].Currency == "USDT" }, "account push never applied")
}
