// Package agent drives the per-connection SPOP state machine: the
// hello/disconnect handshake and the NOTIFY -> ACK request/response loop.
// It is the direct analogue of the teacher's server.handleConn, minus the
// reflection-based service dispatch (NOTIFY's three recognized message
// names are a fixed switch, not a pluggable service registry) and with a
// state machine substituted for "read one frame, reply once" which was
// sufficient for mini-RPC's single in-flight request per goroutine but not
// for SPOP's long-lived, strictly sequential hello -> many-NOTIFY lifecycle.
package agent

import (
	"errors"
	"fmt"
	"log"

	"spoa-agent/internal/connection"
	"spoa-agent/internal/spop"
)

// connState is this connection's position in the AwaitingHello -> Running
// -> Terminated state machine of spec.md §4.6.
type connState int

const (
	stateAwaitingHello connState = iota
	stateRunning
	stateTerminated
)

// errDisconnect is returned internally by handleFrame to unwind Run's loop
// on a HAPROXY_DISCONNECT; it never escapes Run (which turns it into a nil
// return, per the framer's "clean shutdown is not an error" contract).
var errDisconnect = errors.New("agent: disconnect")

// HelloInfo is the content this agent advertises in its AGENT_HELLO reply.
// See spec.md §6: these three values are fixed by the external interface
// this agent implements, not negotiated per connection.
type HelloInfo struct {
	Version      string
	MaxFrameSize uint32
	Capabilities string
}

// DefaultHello is the hello content spec.md §6 mandates: version "2.0",
// max-frame-size 16380, and "pipelining" -- not "pipelining,async", because
// this agent's per-connection processing is strictly sequential (spec.md
// §9's open question, resolved in favor of the honest value).
var DefaultHello = HelloInfo{
	Version:      "2.0",
	MaxFrameSize: 16380,
	Capabilities: "pipelining",
}

// Dispatcher is the narrow interface the state machine consumes for NOTIFY
// processing. internal/tracing.Dispatcher implements it; the state machine
// never reaches into span bookkeeping directly.
type Dispatcher interface {
	Dispatch(header spop.FrameHeader, messages []spop.Message) []spop.Action
}

// Connection drives one accepted SPOP connection end to end.
type Connection struct {
	framer     *connection.Framer
	dispatcher Dispatcher
	hello      HelloInfo
	state      connState
}

// NewConnection builds a Connection ready to Run over framer, dispatching
// NOTIFY frames to dispatcher and advertising hello.
func NewConnection(framer *connection.Framer, dispatcher Dispatcher, hello HelloInfo) *Connection {
	return &Connection{framer: framer, dispatcher: dispatcher, hello: hello, state: stateAwaitingHello}
}

// Run processes frames until the peer disconnects (nil return), the
// connection's socket fails (non-nil return), or HAPROXY_DISCONNECT arrives
// (nil return). Per spec.md §7, only Disconnect and I/O end the loop --
// every codec/protocol error on an individual frame is logged and the loop
// continues.
func (c *Connection) Run() error {
	for {
		frame, err := c.framer.ReadFrame()
		if err != nil {
			if errors.Is(err, connection.ErrMalformedFrame) {
				log.Printf("agent: dropping frame: %v", err)
				continue
			}
			return fmt.Errorf("agent: %w", err)
		}
		if frame == nil {
			return nil
		}

		if err := c.handleFrame(frame); err != nil {
			if errors.Is(err, errDisconnect) {
				return nil
			}
			return fmt.Errorf("agent: %w", err)
		}
	}
}

func (c *Connection) handleFrame(frame *spop.Frame) error {
	switch frame.Header.Type {
	case spop.FrameHAProxyHello:
		if c.state != stateAwaitingHello {
			log.Printf("agent: ignoring re-sent HAPROXY_HELLO on stream %d", frame.Header.StreamID)
			return nil
		}
		reply := spop.Frame{
			Header: spop.ReplyHeader(frame.Header, spop.FrameAgentHello),
			KV: spop.KVList{
				{Name: "version", Value: spop.StringVal(c.hello.Version)},
				{Name: "max-frame-size", Value: spop.Uint32Val(c.hello.MaxFrameSize)},
				{Name: "capabilities", Value: spop.StringVal(c.hello.Capabilities)},
			},
		}
		if err := c.framer.WriteFrame(&reply); err != nil {
			return fmt.Errorf("write AGENT_HELLO: %w", err)
		}
		c.state = stateRunning
		return nil

	case spop.FrameHAProxyDisconnect:
		c.state = stateTerminated
		return errDisconnect

	case spop.FrameNotify:
		if c.state != stateRunning {
			log.Printf("agent: ignoring NOTIFY before hello on stream %d", frame.Header.StreamID)
			return nil
		}
		actions := c.dispatcher.Dispatch(frame.Header, frame.Messages)
		reply := spop.Frame{
			Header:  spop.ReplyHeader(frame.Header, spop.FrameAck),
			Actions: actions,
		}
		if err := c.framer.WriteFrame(&reply); err != nil {
			return fmt.Errorf("write ACK: %w", err)
		}
		return nil

	default:
		log.Printf("agent: ignoring unsupported frame type %d on stream %d", frame.Header.Type, frame.Header.StreamID)
		return nil
	}
}
