package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/langdon0003/ctrader-monitor/internal/openapi"
)

// Venue endpoints. The JSON framing endpoints accept the same payload
// numbering as the protobuf ports.
const (
	LiveHost = "wss://live.ctraderapi.com:5036"
	DemoHost = "wss://demo.ctraderapi.com:5036"
)

// HostURL maps the configured host class to a venue endpoint. Anything
// other than "live" resolves to the demo host.
func HostURL(hostType string) string {
	if hostType == "live" {
		return LiveHost
	}
	return DemoHost
}

var (
	ErrSendQueueFull = errors.New("transport: send queue full")
	ErrClosed        = errors.New("transport: connection closed")
)

// WSConfig tunes one websocket connection.
type WSConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
	SendQueueSize    int
	EventBufferSize  int
}

func (c *WSConfig) defaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 64
	}
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = 256
	}
}

// WSClient is the websocket implementation of Client. One instance serves
// one connection; the session dials a new one on every reconnect attempt.
type WSClient struct {
	cfg    WSConfig
	conn   *websocket.Conn
	events chan Event
	sendq  chan openapi.Envelope
	done   chan struct{}
	wg     sync.WaitGroup
	writer sync.WaitGroup

	once    sync.Once
	mu      sync.Mutex
	reason  string
	dropped bool // true when the peer (not Close) ended the connection
	started bool
}

// NewWSClient builds an unconnected client for the given endpoint.
func NewWSClient(cfg WSConfig) *WSClient {
	cfg.defaults()
	return &WSClient{
		cfg:    cfg,
		events: make(chan Event, cfg.EventBufferSize),
		sendq:  make(chan openapi.Envelope, cfg.SendQueueSize),
		done:   make(chan struct{}),
	}
}

// WSDialer adapts NewWSClient to the Dialer factory shape.
func WSDialer(cfg WSConfig) Dialer {
	return func() Client { return NewWSClient(cfg) }
}

// Connect dials the venue and starts the read and write loops. The events
// channel is closed after the connection ends, with EventDisconnected as
// its final entry unless Close ended it.
func (c *WSClient) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	c.conn = conn
	c.started = true
	c.events <- Event{Kind: EventConnected}

	c.wg.Add(2)
	c.writer.Add(1)
	go c.readLoop()
	go c.writeLoop()

	// Sole owner of the events channel close: waits for both loops so no
	// emit can race it.
	go func() {
		c.wg.Wait()
		c.mu.Lock()
		if c.dropped {
			c.events <- Event{Kind: EventDisconnected, Reason: c.reason}
		}
		c.mu.Unlock()
		close(c.events)
	}()
	return nil
}

// Send enqueues a message for the write loop. It never blocks the event
// loop; a full queue is reported to the caller, write errors surface as a
// disconnect event instead.
func (c *WSClient) Send(msg openapi.Envelope) error {
	select {
	case <-c.done:
		return ErrClosed
	case c.sendq <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Events returns the inbound event queue drained by the session loop.
func (c *WSClient) Events() <-chan Event {
	return c.events
}

// Close tears the connection down without emitting a disconnect event.
// Messages enqueued before Close are flushed first, so a caller's final
// Send (the account logout) reaches the wire; the flush is bounded by the
// per-message write deadline.
func (c *WSClient) Close() error {
	c.once.Do(func() {
		close(c.done)
		if c.started {
			c.writer.Wait()
		}
		if c.conn != nil {
			_ = c.conn.Close()
		}
		if !c.started {
			close(c.events)
		}
	})
	return nil
}

// fail records the peer-initiated disconnect reason and shuts down once.
func (c *WSClient) fail(reason string) {
	c.once.Do(func() {
		c.mu.Lock()
		c.reason = reason
		c.dropped = true
		c.mu.Unlock()
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *WSClient) readLoop() {
	defer c.wg.Done()
	for {
		var env openapi.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.fail(err.Error())
			return
		}
		select {
		case <-c.done:
			return
		case c.events <- Event{Kind: EventMessage, Msg: env}:
		}
	}
}

func (c *WSClient) writeLoop() {
	defer c.wg.Done()
	defer c.writer.Done()
	ping := time.NewTicker(c.cfg.PingInterval)
	defer ping.Stop()
	for {
		select {
		case <-c.done:
			c.drainSend()
			return
		case msg := <-c.sendq:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.fail(err.Error())
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.fail(err.Error())
				return
			}
		}
	}
}

// drainSend writes out whatever was enqueued before shutdown. A write
// error ends the flush; the connection is going away either way.
func (c *WSClient) drainSend() {
	for {
		select {
		case msg := <-c.sendq:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
