package spop

import (
	"strconv"
	"strings"
	"testing"
)

// mustHex parses a space-separated lowercase hex byte dump, the same
// format spec scenarios are written in, into a byte slice.
func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	fields := strings.Fields(s)
	buf := make([]byte, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			t.Fatalf("bad hex byte %q: %v", f, err)
		}
		buf[i] = byte(v)
	}
	return buf
}
