// Package spop implements the wire codec for the Stream Processing Offload
// Protocol: the bespoke varint encoding, the tagged typed-data union, and the
// frame, KV-list, message-list and action-list payload shapes layered on top
// of them.
//
// Errors are sentinel values wrapped with the failing element's name as they
// cross layer boundaries (varint -> string -> typed-data -> kv-list ->
// payload -> frame), so a caller can both errors.Is against the taxonomy and
// read a human diagnostic with fmt.Errorf's %w chain.
package spop

import "errors"

// Leaf error values. Each corresponds to a case in spec.md's error taxonomy.
var (
	// ErrInsufficientBytes means the cursor ran out of input mid-decode.
	// A short buffer at the frame boundary is reported by CheckFrame as
	// ErrIncomplete instead; this error comes from decoding inside a frame
	// whose declared length is already buffered, so the framer returns it
	// wrapped in ErrMalformedFrame.
	ErrInsufficientBytes = errors.New("spop: insufficient bytes")

	// ErrIncomplete marks a frame boundary not yet fully buffered. It drives
	// the connection framer's read loop only and is never logged as a fault.
	ErrIncomplete = errors.New("spop: incomplete frame")

	// ErrInvalidCursor means Parse was called on a slice whose declared
	// length prefix does not match its actual remaining length.
	ErrInvalidCursor = errors.New("spop: invalid cursor")

	// ErrFragmentedModeNotSupported is returned for a well-formed frame whose
	// FIN flag is unset. Fragmented NOTIFY/ACK frames are a non-goal.
	ErrFragmentedModeNotSupported = errors.New("spop: fragmented mode not supported")

	// ErrInvalidType means a typed-data tag's low nibble was outside 0..9.
	ErrInvalidType = errors.New("spop: invalid typed-data type")

	// ErrUnsupportedValue means a BINARY typed-data value was encountered.
	// BINARY is a non-goal: recognized only far enough to reject it.
	ErrUnsupportedValue = errors.New("spop: unsupported typed-data value (BINARY)")

	// ErrNumberConversion means a decoded varint didn't fit the target width
	// (INT32/UINT32).
	ErrNumberConversion = errors.New("spop: number does not fit target width")

	// ErrUtf8 means a STRING body's bytes were not valid UTF-8.
	ErrUtf8 = errors.New("spop: invalid utf-8")

	// ErrInvalidFrameType means a frame header's type byte was not one of the
	// six non-UNSET FrameType values (a type byte of 0, UNSET, is rejected
	// with this error too).
	ErrInvalidFrameType = errors.New("spop: invalid frame type")

	// ErrNotSupported means a frame type was well-formed but the codec has
	// no payload shape for it in that direction (e.g. encoding an
	// AGENT_DISCONNECT).
	ErrNotSupported = errors.New("spop: frame type not supported")

	// ErrInvalidAction means an action record's type byte was neither
	// SET_VAR nor UNSET_VAR, or its scope byte was out of range. The
	// message-list encoder also returns it for a message with more than 255
	// arguments.
	ErrInvalidAction = errors.New("spop: invalid action record")

	// ErrInvalidNumberOfArgs means an action record's n_args didn't match
	// its action type (3 for SET_VAR, 2 for UNSET_VAR).
	ErrInvalidNumberOfArgs = errors.New("spop: invalid number of args")
)
