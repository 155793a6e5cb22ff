package ports

import (
	"context"
	"encoding/json"
)

// ConnState describes the lifecycle of the push channel connection.
type ConnState string

const (
	ConnStateConnected    ConnState = "connected"
	ConnStateDisconnected ConnState = "disconnected"
	ConnStateConnectError ConnState = "connect_error"
)

// PushHandler receives the raw payload of one push event.
type PushHandler func(data json.RawMessage)

// PushConn abstracts the persistent push channel to the backend. It carries
// named events in both directions over a single connection that reconnects
// automatically; re-subscription of previously active topics after a
// reconnect is the caller's responsibility, not the transport's.
type PushConn interface {
	// Connect establishes the connection and starts the read loop. The
	// connection lives until Disconnect or ctx cancellation.
	Connect(ctx context.Context) error
	// Disconnect closes the connection and stops reconnecting.
	Disconnect()
	// Emit marshals payload and sends it as the named event.
	Emit(event string, payload interface{}) error
	// On installs the single transport-level handler for an event name and
	// returns a function that removes it. Fan-out across multiple consumers
	// is the event bus's job, not the transport's.
	On(event string, handler PushHandler) (unsubscribe func())
	// OnStateChange installs the single system-wide connection state
	// listener. Exactly one listener republishes state into the store.
	OnStateChange(func(ConnState, error))
}
