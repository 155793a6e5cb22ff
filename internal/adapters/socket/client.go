// Package socket implements the push-event transport over a single
// persistent WebSocket connection with automatic reconnection.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"

	"tradeconsole/internal/ports"
)

const (
	readDeadline     = 60 * time.Second
	writeDeadline    = 10 * time.Second
	handshakeTimeout = 10 * time.Second
)

// frame is the wire shape of one push event in either direction.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// heartbeatPayload is emitted periodically while connected.
type heartbeatPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// Client implements ports.PushConn over gorilla/websocket. One transport
// handler per event name; fan-out belongs to the bus. Re-subscription of
// topics after a reconnect is the caller's responsibility — the client only
// reports state changes.
type Client struct {
	url               string
	logger            ports.Logger
	reconnectDelay    time.Duration
	maxAttempts       int
	heartbeatInterval time.Duration

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]ports.PushHandler
	stateFn  func(ports.ConnState, error)
	cancel   context.CancelFunc
	writeMu  sync.Mutex
}

// Config holds configuration for the push client.
type Config struct {
	URL                  string
	Logger               ports.Logger
	ReconnectDelay       time.Duration // Initial backoff delay
	MaxReconnectAttempts int           // Consecutive failed dials before giving up
	HeartbeatInterval    time.Duration // 0 disables the heartbeat emit
}

// New creates a push client. Connect must be called before Emit works.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for push client")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required for push client")
	}

	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	attempts := cfg.MaxReconnectAttempts
	if attempts <= 0 {
		attempts = 10
	}

	return &Client{
		url:               cfg.URL,
		logger:            cfg.Logger,
		reconnectDelay:    delay,
		maxAttempts:       attempts,
		heartbeatInterval: cfg.HeartbeatInterval,
		handlers:          make(map[string]ports.PushHandler),
	}, nil
}

// OnStateChange installs the single system-wide connection state listener.
func (c *Client) OnStateChange(fn func(ports.ConnState, error)) {
	c.mu.Lock()
	c.stateFn = fn
	c.mu.Unlock()
}

// On installs the transport-level handler for an event name.
func (c *Client) On(event string, handler ports.PushHandler) func() {
	c.mu.Lock()
	c.handlers[event] = handler
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.handlers, event)
		c.mu.Unlock()
	}
}

// Connect dials the backend and keeps the connection alive until Disconnect
// or ctx cancellation, reconnecting with jittered exponential backoff. The
// first dial happens synchronously so the caller learns immediately whether
// the backend is reachable at all.
func (c *Client) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("push client already connected")
	}
	c.cancel = cancel
	c.mu.Unlock()

	conn, err := c.dial(runCtx)
	if err != nil {
		c.notify(ports.ConnStateConnectError, err)
		c.teardown()
		return err
	}

	go c.run(runCtx, conn)
	return nil
}

// Disconnect closes the connection and stops reconnecting.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	conn := c.conn
	c.cancel = nil
	c.conn = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// Emit marshals payload and writes it as the named event.
func (c *Client) Emit(event string, payload interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("emit %q: %w", event, ports.ErrNotConnected)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("emit %q: %w: %w", event, ports.ErrInvalidRequest, err)
	}
	msg, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("emit %q: %w: %w", event, ports.ErrInvalidRequest, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("emit %q: %w: %w", event, ports.ErrConnectionFailed, err)
	}
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w: %w", c.url, ports.ErrConnectionFailed, err)
	}
	return conn, nil
}

// run owns the connection lifecycle: read pump, heartbeat, reconnect loop.
func (c *Client) run(ctx context.Context, conn *websocket.Conn) {
	b := &backoff.Backoff{
		Min:    c.reconnectDelay,
		Max:    c.reconnectDelay * 32,
		Factor: 2,
		Jitter: true,
	}

	for {
		c.adopt(conn)
		c.notify(ports.ConnStateConnected, nil)
		b.Reset()

		err := c.readPump(ctx, conn)
		c.drop(conn)
		if ctx.Err() != nil {
			return
		}
		c.notify(ports.ConnStateDisconnected, err)
		c.logger.Warn(ctx, "Push connection lost, reconnecting", map[string]interface{}{"error": fmt.Sprint(err)})

		// Reconnect with backoff until success or attempts exhausted.
		var attempt int
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.Duration()):
			}

			next, dialErr := c.dial(ctx)
			if dialErr == nil {
				conn = next
				break
			}
			attempt++
			c.logger.Warn(ctx, "Push reconnect attempt failed", map[string]interface{}{
				"attempt": attempt, "maxAttempts": c.maxAttempts,
			})
			if attempt >= c.maxAttempts {
				c.logger.Error(ctx, dialErr, "Push reconnect attempts exhausted, giving up")
				c.notify(ports.ConnStateConnectError, dialErr)
				c.teardown()
				return
			}
		}
	}
}

// readPump reads frames until the connection dies, dispatching each event to
// its registered handler in arrival order.
func (c *Client) readPump(ctx context.Context, conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	stopHeartbeat := c.startHeartbeat(ctx)
	defer stopHeartbeat()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.logger.Warn(ctx, "Dropping malformed push frame", map[string]interface{}{"error": err.Error()})
			continue
		}

		c.mu.Lock()
		handler := c.handlers[f.Event]
		c.mu.Unlock()
		if handler == nil {
			continue
		}
		handler(f.Data)
	}
}

func (c *Client) startHeartbeat(ctx context.Context) func() {
	if c.heartbeatInterval <= 0 {
		return func() {}
	}
	hbCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(c.heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				if err := c.Emit("heartbeat", heartbeatPayload{Timestamp: time.Now().UnixMilli()}); err != nil {
					c.logger.Debug(hbCtx, "Heartbeat emit failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()
	return cancel
}

func (c *Client) adopt(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

func (c *Client) teardown() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Client) notify(state ports.ConnState, err error) {
	c.mu.Lock()
	fn := c.stateFn
	c.mu.Unlock()
	if fn != nil {
		fn(state, err)
	}
}
