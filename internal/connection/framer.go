// Package connection reads and writes SPOP frames over a byte stream,
// solving the same "where does one frame end and the next begin" problem
// the teacher's protocol.Decode/Encode solve for mini-RPC's 14-byte header
// -- except SPOP's frame length is itself the cursor CheckFrame needs, so
// there's no separate magic-number probe.
package connection

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"spoa-agent/internal/spop"
)

// defaultReadSize is how much we try to read from the socket on each
// refill of the framer's buffer.
const defaultReadSize = 4096

// ErrMalformedFrame wraps a complete-but-invalid frame: the codec error
// that produced it is chained in with %w. Per spec.md §7 these are
// per-frame, non-fatal -- the caller logs and keeps reading. Every other
// error ReadFrame returns is an I/O failure and ends the connection.
var ErrMalformedFrame = errors.New("connection: malformed frame")

// Framer owns a growable read buffer over a net.Conn and knows how to pull
// complete SPOP frames out of it, compacting the buffer as it goes. It also
// serializes frame writes so two goroutines sharing a connection's writer
// (this agent never does, but a defensive caller might) can't interleave
// bytes -- the same discipline the teacher's per-connection writeMu gives
// handleRequest.
type Framer struct {
	conn net.Conn
	buf  []byte

	writeMu sync.Mutex
}

// NewFramer wraps conn in a Framer.
func NewFramer(conn net.Conn) *Framer {
	return &Framer{conn: conn}
}

// ReadFrame reads and decodes the next complete frame from the connection,
// growing and refilling its internal buffer as needed. It returns
// (nil, nil) iff the peer closed the connection cleanly on a frame
// boundary; a plain error wrapping the socket failure for a premature
// close mid-frame or any other I/O fault; or an ErrMalformedFrame-wrapping
// error for a complete but invalid frame (non-fatal, see ErrMalformedFrame).
func (f *Framer) ReadFrame() (*spop.Frame, error) {
	for {
		total, err := spop.CheckFrame(f.buf)
		if err == nil {
			frame, parseErr := spop.ParseFrame(f.buf[:total])
			f.buf = f.buf[total:]
			f.compact()
			if parseErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, parseErr)
			}
			return &frame, nil
		}
		if !errors.Is(err, spop.ErrIncomplete) {
			// CheckFrame only ever fails with ErrIncomplete; anything else
			// would be a bug in the codec, not a wire condition.
			return nil, fmt.Errorf("connection: %w", err)
		}

		chunk := make([]byte, defaultReadSize)
		n, readErr := f.conn.Read(chunk)
		if n > 0 {
			f.buf = append(f.buf, chunk[:n]...)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) && len(f.buf) == 0 {
				return nil, nil
			}
			if errors.Is(readErr, io.EOF) {
				return nil, fmt.Errorf("connection: peer closed mid-frame: %w", io.ErrUnexpectedEOF)
			}
			return nil, fmt.Errorf("connection: read: %w", readErr)
		}
	}
}

// WriteFrame serializes frame to a scratch buffer and flushes it in a
// single Write, so a partial frame is never observable on the wire. The
// agent only ever writes AGENT_HELLO and ACK; a type spop.EncodeFrame has no
// payload shape for (e.g. AGENT_DISCONNECT) surfaces spop.ErrNotSupported.
func (f *Framer) WriteFrame(frame *spop.Frame) error {
	buf, err := spop.EncodeFrame(nil, *frame)
	if err != nil {
		return fmt.Errorf("connection: encode frame: %w", err)
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if _, err := f.conn.Write(buf); err != nil {
		return fmt.Errorf("connection: write: %w", err)
	}
	return nil
}

// compact reallocates the buffer to drop its already-consumed prefix once
// headroom runs low, so a long-lived connection doesn't retain an
// ever-growing backing array purely from repeated appends.
func (f *Framer) compact() {
	if cap(f.buf)-len(f.buf) < defaultReadSize {
		f.buf = bytes.Clone(f.buf)
	}
}
