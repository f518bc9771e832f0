package spop

import "fmt"

// KVPair is one (name, value) entry of an ordered KV-list. spec.md §9
// flags the Rust source's evolution from a keyed map to an ordered list:
// name collisions (repeated "tag" keys, see the tracing package's tag
// extraction) are legal and carry meaning, so this is a slice, never a map.
type KVPair struct {
	Name  string
	Value TypedData
}

// KVList is an ordered sequence of (name, value) pairs. It is the payload
// shape of HELLO frames and of each individual message body inside NOTIFY.
type KVList []KVPair

// First returns the value of the first pair named name, mirroring the
// lookup-by-first-match behavior the domain needs (e.g. finding "id" in a
// message body) without silently collapsing later duplicates the way a map
// would.
func (l KVList) First(name string) (TypedData, bool) {
	for _, p := range l {
		if p.Name == name {
			return p.Value, true
		}
	}
	return TypedData{}, false
}

// encodeKVList appends the wire encoding of an entire KV-list (no count
// prefix -- it consumes the rest of its enclosing payload).
func encodeKVList(dst []byte, l KVList) ([]byte, error) {
	for _, p := range l {
		dst = encodeString(dst, p.Name)
		var err error
		dst, err = encodeTypedData(dst, p.Value)
		if err != nil {
			return nil, fmt.Errorf("kv-list value %q: %w", p.Name, err)
		}
	}
	return dst, nil
}

// decodeKVList reads (name, value) pairs from c until it is exhausted. Used
// for HELLO payloads, which run to the end of the frame.
func decodeKVList(c *cursor) (KVList, error) {
	var l KVList
	for c.remaining() > 0 {
		name, err := decodeString(c)
		if err != nil {
			return nil, fmt.Errorf("kv-list name: %w", err)
		}
		value, err := decodeTypedData(c)
		if err != nil {
			return nil, fmt.Errorf("kv-list value %q: %w", name, err)
		}
		l = append(l, KVPair{Name: name, Value: value})
	}
	return l, nil
}
