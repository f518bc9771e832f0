package spop

// This is the SPOP varint, distinct from Protocol-Buffers varint: values
// below 240 are a single byte, and the continuation scheme front-loads four
// extra bits into the first byte of the multi-byte form.
//
// encodeVarint appends the canonical encoding of v to dst and returns the
// extended slice.
func encodeVarint(dst []byte, v uint64) []byte {
	if v < 240 {
		return append(dst, byte(v))
	}

	dst = append(dst, byte(v)|0xF0)
	v = (v - 240) >> 4
	for v >= 128 {
		dst = append(dst, byte(v)|0x80)
		v = (v - 128) >> 7
	}
	return append(dst, byte(v))
}

// decodeVarint reads a varint from c, returning the decoded value.
func decodeVarint(c *cursor) (uint64, error) {
	b0, err := c.readByte()
	if err != nil {
		return 0, err
	}
	res := uint64(b0)
	if res < 240 {
		return res, nil
	}

	shift := uint(4)
	for {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		res += uint64(b) << shift
		shift += 7
		if b < 128 {
			break
		}
	}
	return res, nil
}
