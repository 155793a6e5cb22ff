// Package bus fans named push events out to registered handlers with
// reference-counted transport subscriptions.
package bus

import (
	"encoding/json"
	"sync"

	"tradeconsole/internal/ports"
)

type entry struct {
	id      uint64
	handler ports.PushHandler
}

// Bus deduplicates transport-level subscriptions: registering the first
// handler for an event name opens the underlying subscription, removing the
// last one closes it. Handlers for one event run in registration order; no
// ordering is guaranteed across different event names.
type Bus struct {
	conn ports.PushConn

	mu       sync.Mutex
	nextID   uint64
	handlers map[string][]entry
	closers  map[string]func()
}

// New creates a bus over the given push transport.
func New(conn ports.PushConn) *Bus {
	return &Bus{
		conn:     conn,
		handlers: make(map[string][]entry),
		closers:  make(map[string]func()),
	}
}

// Subscribe registers a handler for an event name and returns a function
// that removes exactly that registration. Calling the returned function more
// than once is a no-op.
func (b *Bus) Subscribe(event string, handler ports.PushHandler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	first := len(b.handlers[event]) == 0
	b.handlers[event] = append(b.handlers[event], entry{id: id, handler: handler})

	if first {
		b.closers[event] = b.conn.On(event, func(data json.RawMessage) {
			b.dispatch(event, data)
		})
	}

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(event, id) })
	}
}

// HandlerCount reports how many handlers are registered for an event.
func (b *Bus) HandlerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}

func (b *Bus) dispatch(event string, data json.RawMessage) {
	b.mu.Lock()
	entries := make([]entry, len(b.handlers[event]))
	copy(entries, b.handlers[event])
	b.mu.Unlock()

	for _, e := range entries {
		e.handler(data)
	}
}

func (b *Bus) remove(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[event]
	for i, e := range entries {
		if e.id == id {
			b.handlers[event] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(b.handlers[event]) == 0 {
		delete(b.handlers, event)
		if closer, ok := b.closers[event]; ok {
			delete(b.closers, event)
			closer()
		}
	}
}
