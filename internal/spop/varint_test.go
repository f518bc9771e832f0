package spop

import "testing"

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 100, 239, 240, 241, 1000, 65535, 65536,
		1 << 32, 1<<32 - 1, 1 << 40, 1<<64 - 1,
	}
	for _, v := range values {
		buf := encodeVarint(nil, v)
		c := newCursor(buf)
		got, err := decodeVarint(c)
		if err != nil {
			t.Fatalf("decode(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round-trip(%d) = %d", v, got)
		}
		if c.remaining() != 0 {
			t.Fatalf("decode(%d) left %d unread bytes", v, c.remaining())
		}
		if len(buf) > 10 {
			t.Fatalf("encode(%d) produced %d bytes, want <=10", v, len(buf))
		}
		if v < 240 && len(buf) != 1 {
			t.Fatalf("encode(%d) produced %d bytes, want 1", v, len(buf))
		}
	}
}

func TestVarintEdgeCases(t *testing.T) {
	if got := encodeVarint(nil, 239); string(got) != "\xef" {
		t.Fatalf("encode(239) = % x, want ef", got)
	}
	if got := encodeVarint(nil, 240); string(got) != "\xf0\x00" {
		t.Fatalf("encode(240) = % x, want f0 00", got)
	}

	buf := encodeVarint(nil, 1<<32)
	got, err := decodeVarint(newCursor(buf))
	if err != nil {
		t.Fatalf("decode(2^32): %v", err)
	}
	if got != 1<<32 {
		t.Fatalf("decode(2^32) = %d", got)
	}
}
