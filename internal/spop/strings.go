package spop

import (
	"fmt"
	"unicode/utf8"
)

// encodeString appends a varint length prefix followed by the raw UTF-8
// bytes of s.
func encodeString(dst []byte, s string) []byte {
	dst = encodeVarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// decodeString reads a varint-prefixed, UTF-8-validated string from c.
func decodeString(c *cursor) (string, error) {
	n, err := decodeVarint(c)
	if err != nil {
		return "", fmt.Errorf("string length: %w", err)
	}
	if n == 0 {
		return "", nil
	}

	b, err := c.readBytes(int(n))
	if err != nil {
		return "", fmt.Errorf("string body: %w", err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("string body: %w", ErrUtf8)
	}
	return string(b), nil
}
