package spop

import (
	"encoding/binary"
	"fmt"
)

// FrameType is the frame header's type byte.
type FrameType byte

const (
	FrameUnset             FrameType = 0
	FrameHAProxyHello      FrameType = 1
	FrameHAProxyDisconnect FrameType = 2
	FrameNotify            FrameType = 3
	FrameAgentHello        FrameType = 101
	FrameAgentDisconnect   FrameType = 102
	FrameAck               FrameType = 103
)

func (t FrameType) valid() bool {
	switch t {
	case FrameHAProxyHello, FrameHAProxyDisconnect, FrameNotify, FrameAgentHello, FrameAgentDisconnect, FrameAck:
		return true
	default:
		return false
	}
}

// FrameFlags is the 32-bit flags field. Only bit 0 (FIN) is consumed by
// this agent; bit 1 (ABORT) is recognized on the wire but never acted on.
type FrameFlags uint32

const (
	flagFin   FrameFlags = 0x00000001
	flagAbort FrameFlags = 0x00000002
)

func NewFrameFlags(fin, abort bool) FrameFlags {
	var f FrameFlags
	if fin {
		f |= flagFin
	}
	if abort {
		f |= flagAbort
	}
	return f
}

func (f FrameFlags) IsFin() bool   { return f&flagFin != 0 }
func (f FrameFlags) IsAbort() bool { return f&flagAbort != 0 }

// FrameHeader is the fixed shape every frame carries ahead of its payload.
type FrameHeader struct {
	Type     FrameType
	Flags    FrameFlags
	StreamID uint64
	FrameID  uint64
}

// ReplyHeader builds the header of a reply frame from an inbound header: it
// copies StreamID/FrameID, forces FIN=true and ABORT=false, and stamps the
// caller-supplied reply frame type.
func ReplyHeader(in FrameHeader, replyType FrameType) FrameHeader {
	return FrameHeader{
		Type:     replyType,
		Flags:    NewFrameFlags(true, false),
		StreamID: in.StreamID,
		FrameID:  in.FrameID,
	}
}

// Frame is a decoded SPOP frame. Only the fields relevant to Header.Type are
// populated: KV for the three KV-list-payload types, Messages for NOTIFY,
// Actions for ACK. AGENT_DISCONNECT carries no payload.
type Frame struct {
	Header   FrameHeader
	KV       KVList
	Messages []Message
	Actions  []Action
}

// CheckFrame reports whether buf holds a complete frame at its start. On
// success it returns the total byte length (length prefix included) the
// frame occupies; ParseFrame should then be called with exactly that many
// leading bytes of buf. A short buffer returns ErrIncomplete, never a hard
// error -- it's the framer's signal to read more and retry.
func CheckFrame(buf []byte) (int, error) {
	const lengthFieldSize = 4
	if len(buf) < lengthFieldSize {
		return 0, ErrIncomplete
	}
	length := binary.BigEndian.Uint32(buf[:lengthFieldSize])
	total := lengthFieldSize + int(length)
	if len(buf) < total {
		return 0, ErrIncomplete
	}
	return total, nil
}

// ParseFrame decodes a frame from buf. buf must be exactly the slice
// CheckFrame validated: a 4-byte length prefix followed by that many bytes
// of header+payload, no more and no less.
func ParseFrame(buf []byte) (Frame, error) {
	if len(buf) < 4 {
		return Frame{}, fmt.Errorf("parse frame: %w", ErrInsufficientBytes)
	}
	length := binary.BigEndian.Uint32(buf[:4])
	rest := buf[4:]
	if int(length) != len(rest) {
		return Frame{}, fmt.Errorf("parse frame: %w: expected %d, remaining %d", ErrInvalidCursor, length, len(rest))
	}

	c := newCursor(rest)
	header, err := decodeFrameHeader(c)
	if err != nil {
		return Frame{}, fmt.Errorf("parse frame header: %w", err)
	}
	if !header.Flags.IsFin() {
		return Frame{}, fmt.Errorf("parse frame: %w", ErrFragmentedModeNotSupported)
	}

	frame := Frame{Header: header}
	switch header.Type {
	case FrameHAProxyHello, FrameAgentHello, FrameHAProxyDisconnect:
		kv, err := decodeKVList(c)
		if err != nil {
			return Frame{}, fmt.Errorf("parse frame payload: %w", err)
		}
		frame.KV = kv
	case FrameNotify:
		messages, err := decodeMessageList(c)
		if err != nil {
			return Frame{}, fmt.Errorf("parse frame payload: %w", err)
		}
		frame.Messages = messages
	case FrameAck:
		actions, err := decodeActionList(c)
		if err != nil {
			return Frame{}, fmt.Errorf("parse frame payload: %w", err)
		}
		frame.Actions = actions
	case FrameAgentDisconnect:
		// No payload; nothing further to decode.
	default:
		return Frame{}, fmt.Errorf("parse frame payload: %w: %d", ErrNotSupported, header.Type)
	}
	return frame, nil
}

// EncodeFrame appends the wire encoding of frame (length prefix included)
// to dst. It encodes AGENT_HELLO, HAPROXY_HELLO, HAPROXY_DISCONNECT, ACK and
// NOTIFY (the agent itself only ever writes AGENT_HELLO and ACK; the other
// three let tests play the proxy side); any other Header.Type, including
// AGENT_DISCONNECT, is ErrNotSupported.
func EncodeFrame(dst []byte, frame Frame) ([]byte, error) {
	var body []byte
	body = encodeFrameHeader(body, frame.Header)

	switch frame.Header.Type {
	case FrameAgentHello, FrameHAProxyHello, FrameHAProxyDisconnect:
		var err error
		body, err = encodeKVList(body, frame.KV)
		if err != nil {
			return nil, fmt.Errorf("encode frame payload: %w", err)
		}
	case FrameAck:
		var err error
		body, err = encodeActionList(body, frame.Actions)
		if err != nil {
			return nil, fmt.Errorf("encode frame payload: %w", err)
		}
	case FrameNotify:
		var err error
		body, err = encodeMessageList(body, frame.Messages)
		if err != nil {
			return nil, fmt.Errorf("encode frame payload: %w", err)
		}
	default:
		return nil, fmt.Errorf("encode frame: %w: %d", ErrNotSupported, frame.Header.Type)
	}

	var lengthBuf [4]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(body)))
	dst = append(dst, lengthBuf[:]...)
	dst = append(dst, body...)
	return dst, nil
}

func decodeFrameHeader(c *cursor) (FrameHeader, error) {
	rawType, err := c.readByte()
	if err != nil {
		return FrameHeader{}, fmt.Errorf("type: %w", err)
	}
	frameType := FrameType(rawType)
	if !frameType.valid() {
		return FrameHeader{}, fmt.Errorf("type: %w: %d", ErrInvalidFrameType, rawType)
	}

	rawFlags, err := c.readBytes(4)
	if err != nil {
		return FrameHeader{}, fmt.Errorf("flags: %w", err)
	}
	flags := FrameFlags(binary.BigEndian.Uint32(rawFlags))

	streamID, err := decodeVarint(c)
	if err != nil {
		return FrameHeader{}, fmt.Errorf("stream_id: %w", err)
	}
	frameID, err := decodeVarint(c)
	if err != nil {
		return FrameHeader{}, fmt.Errorf("frame_id: %w", err)
	}

	return FrameHeader{Type: frameType, Flags: flags, StreamID: streamID, FrameID: frameID}, nil
}

func encodeFrameHeader(dst []byte, h FrameHeader) []byte {
	dst = append(dst, byte(h.Type))
	var flagsBuf [4]byte
	binary.BigEndian.PutUint32(flagsBuf[:], uint32(h.Flags))
	dst = append(dst, flagsBuf[:]...)
	dst = encodeVarint(dst, h.StreamID)
	dst = encodeVarint(dst, h.FrameID)
	return dst
}
