package spop

import (
	"fmt"
	"net"
)

// DataType is the low-nibble type tag of a typed-data value.
type DataType byte

const (
	TypeNull   DataType = 0
	TypeBool   DataType = 1
	TypeInt32  DataType = 2
	TypeUint32 DataType = 3
	TypeInt64  DataType = 4
	TypeUint64 DataType = 5
	TypeIPv4   DataType = 6
	TypeIPv6   DataType = 7
	TypeString DataType = 8
	TypeBinary DataType = 9
)

func (t DataType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeBool:
		return "BOOL"
	case TypeInt32:
		return "INT32"
	case TypeUint32:
		return "UINT32"
	case TypeInt64:
		return "INT64"
	case TypeUint64:
		return "UINT64"
	case TypeIPv4:
		return "IPV4"
	case TypeIPv6:
		return "IPV6"
	case TypeString:
		return "STRING"
	case TypeBinary:
		return "BINARY"
	default:
		return fmt.Sprintf("DataType(%d)", byte(t))
	}
}

const boolFlagBit byte = 0x10

// TypedData is the tagged union of the ten SPOP value kinds. Only one of
// the fields is meaningful for a given Type; BINARY never carries a payload
// in this agent (Non-goal: it is recognized on decode only to be rejected,
// and Encode refuses to produce it).
type TypedData struct {
	Type DataType

	Bool   bool
	Int32  int32
	Uint32 uint32
	Int64  int64
	Uint64 uint64
	IPv4   [4]byte
	IPv6   [16]byte
	String string
}

func Null() TypedData                { return TypedData{Type: TypeNull} }
func Bool(v bool) TypedData          { return TypedData{Type: TypeBool, Bool: v} }
func Int32(v int32) TypedData        { return TypedData{Type: TypeInt32, Int32: v} }
func Uint32Val(v uint32) TypedData   { return TypedData{Type: TypeUint32, Uint32: v} }
func Int64Val(v int64) TypedData     { return TypedData{Type: TypeInt64, Int64: v} }
func Uint64Val(v uint64) TypedData   { return TypedData{Type: TypeUint64, Uint64: v} }
func StringVal(v string) TypedData   { return TypedData{Type: TypeString, String: v} }
func IPv4Val(v [4]byte) TypedData    { return TypedData{Type: TypeIPv4, IPv4: v} }
func IPv6Val(v [16]byte) TypedData   { return TypedData{Type: TypeIPv6, IPv6: v} }

// encodeTypedData appends the on-wire encoding of v to dst.
func encodeTypedData(dst []byte, v TypedData) ([]byte, error) {
	switch v.Type {
	case TypeNull:
		return append(dst, byte(TypeNull)), nil
	case TypeBool:
		tag := byte(TypeBool)
		if v.Bool {
			tag |= boolFlagBit
		}
		return append(dst, tag), nil
	case TypeInt32:
		dst = append(dst, byte(TypeInt32))
		return encodeVarint(dst, uint64(uint32(v.Int32))), nil
	case TypeUint32:
		dst = append(dst, byte(TypeUint32))
		return encodeVarint(dst, uint64(v.Uint32)), nil
	case TypeInt64:
		dst = append(dst, byte(TypeInt64))
		return encodeVarint(dst, uint64(v.Int64)), nil
	case TypeUint64:
		dst = append(dst, byte(TypeUint64))
		return encodeVarint(dst, v.Uint64), nil
	case TypeIPv4:
		dst = append(dst, byte(TypeIPv4))
		return append(dst, v.IPv4[:]...), nil
	case TypeIPv6:
		dst = append(dst, byte(TypeIPv6))
		return append(dst, v.IPv6[:]...), nil
	case TypeString:
		dst = append(dst, byte(TypeString))
		return encodeString(dst, v.String), nil
	case TypeBinary:
		return nil, fmt.Errorf("encode typed-data: %w", ErrUnsupportedValue)
	default:
		return nil, fmt.Errorf("encode typed-data: %w: %d", ErrInvalidType, byte(v.Type))
	}
}

// decodeTypedData reads one typed-data value from c.
func decodeTypedData(c *cursor) (TypedData, error) {
	raw, err := c.readByte()
	if err != nil {
		return TypedData{}, fmt.Errorf("typed-data tag: %w", err)
	}

	typ := DataType(raw & 0x0F)
	switch typ {
	case TypeNull:
		return Null(), nil
	case TypeBool:
		return Bool(raw&boolFlagBit == boolFlagBit), nil
	case TypeInt32:
		raw64, err := decodeVarint(c)
		if err != nil {
			return TypedData{}, fmt.Errorf("typed-data INT32: %w", err)
		}
		if raw64 > 0xFFFFFFFF {
			return TypedData{}, fmt.Errorf("typed-data INT32: %w", ErrNumberConversion)
		}
		return Int32(int32(uint32(raw64))), nil
	case TypeUint32:
		raw64, err := decodeVarint(c)
		if err != nil {
			return TypedData{}, fmt.Errorf("typed-data UINT32: %w", err)
		}
		if raw64 > 0xFFFFFFFF {
			return TypedData{}, fmt.Errorf("typed-data UINT32: %w", ErrNumberConversion)
		}
		return Uint32Val(uint32(raw64)), nil
	case TypeInt64:
		raw64, err := decodeVarint(c)
		if err != nil {
			return TypedData{}, fmt.Errorf("typed-data INT64: %w", err)
		}
		return Int64Val(int64(raw64)), nil
	case TypeUint64:
		raw64, err := decodeVarint(c)
		if err != nil {
			return TypedData{}, fmt.Errorf("typed-data UINT64: %w", err)
		}
		return Uint64Val(raw64), nil
	case TypeIPv4:
		b, err := c.readBytes(4)
		if err != nil {
			return TypedData{}, fmt.Errorf("typed-data IPV4: %w", err)
		}
		var v [4]byte
		copy(v[:], b)
		return IPv4Val(v), nil
	case TypeIPv6:
		b, err := c.readBytes(16)
		if err != nil {
			return TypedData{}, fmt.Errorf("typed-data IPV6: %w", err)
		}
		var v [16]byte
		copy(v[:], b)
		return IPv6Val(v), nil
	case TypeString:
		s, err := decodeString(c)
		if err != nil {
			return TypedData{}, fmt.Errorf("typed-data STRING: %w", err)
		}
		return StringVal(s), nil
	case TypeBinary:
		return TypedData{}, fmt.Errorf("typed-data BINARY: %w", ErrUnsupportedValue)
	default:
		return TypedData{}, fmt.Errorf("typed-data: %w: %d", ErrInvalidType, raw)
	}
}

// Stringify renders a typed-data value as text, used only by the tag
// extraction algorithm in internal/tracing to build span attribute values.
func Stringify(v TypedData) string {
	switch v.Type {
	case TypeNull:
		return "<null>"
	case TypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeInt32:
		return fmt.Sprintf("%d", v.Int32)
	case TypeUint32:
		return fmt.Sprintf("%d", v.Uint32)
	case TypeInt64:
		return fmt.Sprintf("%d", v.Int64)
	case TypeUint64:
		return fmt.Sprintf("%d", v.Uint64)
	case TypeIPv4:
		return net.IP(v.IPv4[:]).String()
	case TypeIPv6:
		return net.IP(v.IPv6[:]).String()
	case TypeString:
		return v.String
	case TypeBinary:
		return "<bin>"
	default:
		return fmt.Sprintf("<unknown type %d>", byte(v.Type))
	}
}
