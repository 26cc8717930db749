// Package transport carries openapi envelopes over one venue connection.
// The session layer owns reconnection; a Client here is a single
// connection attempt, replaced wholesale when it drops.
package transport

import (
	"context"

	"github.com/langdon0003/ctrader-monitor/internal/openapi"
)

// EventKind discriminates the transport event union.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventMessage
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is one entry in the inbound queue drained by the session loop:
// connected, disconnected(reason), or an inbound message.
type Event struct {
	Kind   EventKind
	Reason string            // set for EventDisconnected
	Msg    openapi.Envelope  // set for EventMessage
}

// Client is an opaque bidirectional channel to the venue.
//
// Connect establishes the connection and emits EventConnected on the
// events channel. Send enqueues an outbound envelope without blocking the
// caller's loop; write failures surface as EventDisconnected, not as Send
// errors. The events channel is closed after EventDisconnected or Close.
type Client interface {
	Connect(ctx context.Context) error
	Send(msg openapi.Envelope) error
	Events() <-chan Event
	Close() error
}

// Dialer builds a fresh Client per connection attempt, letting the session
// replace the transport handle wholesale on reconnect and letting tests
// substitute fakes.
type Dialer func() Client
