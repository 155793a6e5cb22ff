package bus

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/internal/ports"
)

// fakeConn records transport-level subscriptions so the tests can assert
// the ref-counting behavior and inject events.
type fakeConn struct {
	handlers map[string]ports.PushHandler
	opened   map[string]int
	closed   map[string]int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		handlers: make(map[string]ports.PushHandler),
		opened:   make(map[string]int),
		closed:   make(map[string]int),
	}
}

func (f *fakeConn) Connect(ctx context.Context) error          { return nil }
func (f *fakeConn) Disconnect()                                {}
func (f *fakeConn) Emit(event string, payload interface{}) error { return nil }
func (f *fakeConn) OnStateChange(fn func(ports.ConnState, error)) {}

func (f *fakeConn) On(event string, handler ports.PushHandler) func() {
	f.handlers[event] = handler
	f.opened[event]++
	return func() {
		delete(f.handlers, event)
		f.closed[event]++
	}
}

func (f *fakeConn) push(event string, data string) {
	if h, ok := f.handlers[event]; ok {
		h(json.RawMessage(data))
	}
}

func TestSubscribeOpensTransportOnce(t *testing.T) {
	conn := newFakeConn()
	b := New(conn)

	var got []string
	unsub1 := b.Subscribe("tick", func(data json.RawMessage) { got = append(got, "h1") })
	unsub2 := b.Subscribe("tick", func(data json.RawMessage) { got = append(got, "h2") })

	// One transport slot per event name regardless of handler count.
	assert.Equal(t, 1, conn.opened["tick"])
	assert.Equal(t, 2, b.HandlerCount("tick"))

	conn.push("tick", `{}`)
	// Registration order is preserved within one event name.
	assert.Equal(t, []string{"h1", "h2"}, got)

	unsub1()
	assert.Equal(t, 1, b.HandlerCount("tick"))
	assert.Equal(t, 0, conn.closed["tick"], "transport stays open while a handler remains")

	unsub2()
	assert.Equal(t, 0, b.HandlerCount("tick"))
	assert.Equal(t, 1, conn.closed["tick"], "last unsubscribe closes the transport slot")
}

func TestUnsubscribeRemovesExactRegistration(t *testing.T) {
	conn := newFakeConn()
	b := New(conn)

	var got []string
	handler := func(tag string) ports.PushHandler {
		return func(data json.RawMessage) { got = append(got, tag) }
	}

	// Same function body registered twice: each registration is tracked
	// separately, and unsubscribing one leaves the other alive.
	unsub1 := b.Subscribe("order", handler("a"))
	_ = b.Subscribe("order", handler("b"))

	unsub1()
	conn.push("order", `{}`)
	assert.Equal(t, []string{"b"}, got)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	conn := newFakeConn()
	b := New(conn)

	unsub := b.Subscribe("tick", func(json.RawMessage) {})
	_ = b.Subscribe("tick", func(json.RawMessage) {})

	unsub()
	unsub()
	unsub()

	// Repeated calls must not decrement someone else's registration.
	assert.Equal(t, 1, b.HandlerCount("tick"))
	assert.Equal(t, 0, conn.closed["tick"])
}

func TestResubscribeAfterEmptyReopensTransport(t *testing.T) {
	conn := newFakeConn()
	b := New(conn)

	unsub := b.Subscribe("trade", func(json.RawMessage) {})
	unsub()
	require.Equal(t, 1, conn.closed["trade"])

	var hits int
	_ = b.Subscribe("trade", func(json.RawMessage) { hits++ })
	assert.Equal(t, 2, conn.opened["trade"])

	conn.push("trade", `{}`)
	assert.Equal(t, 1, hits)
}

func TestEventNamesAreIndependent(t *testing.T) {
	conn := newFakeConn()
	b := New(conn)

	var ticks, orders int
	_ = b.Subscribe("tick", func(json.RawMessage) { ticks++ })
	unsubOrder := b.Subscribe("order", func(json.RawMessage) { orders++ })

	unsubOrder()
	conn.push("tick", `{}`)
	conn.push("order", `{}`)

	assert.Equal(t, 1, ticks)
	assert.Equal(t, 0, orders)
	assert.Equal(t, 1, conn.closed["order"])
	assert.Equal(t, 0, conn.closed["tick"])
}
