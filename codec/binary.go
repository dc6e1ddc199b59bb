package codec

import (
	"encoding"
	"fmt"
	"math"

	"github.com/stowkv/stowkv/util"
)

// Binary is a compact fixed-layout Codec. The layout is implied by the
// target type rather than tagged in the bytes:
//
//   bool                     one byte, 0 or 1
//   int8..int64, uint8..uint64  big-endian, the type's width
//   int, uint                zigzag varint, plain varint
//   float32, float64         big-endian IEEE 754 bits
//   string, []byte           a varint byte count, then the raw bytes
//   encoding.BinaryMarshaler whatever MarshalBinary returns
//
// Anything else is an error. Use JSON for structured values that do not
// implement encoding.BinaryMarshaler.
//
// An encoding is never zero bytes: strings and byte slices carry their
// length prefix even when empty, and a BinaryMarshaler that marshals to
// nothing is an error. Stores cannot represent an empty value.
type Binary struct{}

func (Binary) Marshal(v any) ([]byte, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case int8:
		return []byte{byte(v)}, nil
	case uint8:
		return []byte{v}, nil
	case int16:
		return []byte{byte(uint16(v) >> 8), byte(v)}, nil
	case uint16:
		return []byte{byte(v >> 8), byte(v)}, nil
	case int32:
		return util.EncodeUint32(nil, uint32(v)), nil
	case uint32:
		return util.EncodeUint32(nil, v), nil
	case int64:
		return util.EncodeUint64(nil, uint64(v)), nil
	case uint64:
		return util.EncodeUint64(nil, v), nil
	case int:
		return util.EncodeZigzag64(nil, int64(v)), nil
	case uint:
		return util.EncodeVarint(nil, uint64(v)), nil
	case float32:
		return util.EncodeUint32(nil, math.Float32bits(v)), nil
	case float64:
		return util.EncodeUint64(nil, math.Float64bits(v)), nil
	case string:
		return append(util.EncodeVarint(nil, uint64(len(v))), v...), nil
	case []byte:
		return append(util.EncodeVarint(nil, uint64(len(v))), v...), nil
	case encoding.BinaryMarshaler:
		data, err := v.MarshalBinary()
		if err == nil && len(data) == 0 {
			return nil, fmt.Errorf("codec: binary: %T marshaled to zero bytes", v)
		}
		return data, err
	}
	return nil, fmt.Errorf("codec: binary: cannot marshal %T", v)
}

func (Binary) Unmarshal(data []byte, v any) error {
	switch v := v.(type) {
	case *bool:
		if len(data) != 1 {
			return sizeErr(data, v)
		}
		*v = data[0] != 0
	case *int8:
		if len(data) != 1 {
			return sizeErr(data, v)
		}
		*v = int8(data[0])
	case *uint8:
		if len(data) != 1 {
			return sizeErr(data, v)
		}
		*v = data[0]
	case *int16:
		if len(data) != 2 {
			return sizeErr(data, v)
		}
		*v = int16(uint16(data[0])<<8 | uint16(data[1]))
	case *uint16:
		if len(data) != 2 {
			return sizeErr(data, v)
		}
		*v = uint16(data[0])<<8 | uint16(data[1])
	case *int32:
		u, ok := util.DecodeUint32(data)
		if !ok || len(data) != 4 {
			return sizeErr(data, v)
		}
		*v = int32(u)
	case *uint32:
		u, ok := util.DecodeUint32(data)
		if !ok || len(data) != 4 {
			return sizeErr(data, v)
		}
		*v = u
	case *int64:
		u, ok := util.DecodeUint64(data)
		if !ok || len(data) != 8 {
			return sizeErr(data, v)
		}
		*v = int64(u)
	case *uint64:
		u, ok := util.DecodeUint64(data)
		if !ok || len(data) != 8 {
			return sizeErr(data, v)
		}
		*v = u
	case *int:
		rest, n, ok := util.DecodeZigzag64(data)
		if !ok || len(rest) != 0 {
			return sizeErr(data, v)
		}
		*v = int(n)
	case *uint:
		rest, u, ok := util.DecodeVarint(data)
		if !ok || len(rest) != 0 {
			return sizeErr(data, v)
		}
		*v = uint(u)
	case *float32:
		u, ok := util.DecodeUint32(data)
		if !ok || len(data) != 4 {
			return sizeErr(data, v)
		}
		*v = math.Float32frombits(u)
	case *float64:
		u, ok := util.DecodeUint64(data)
		if !ok || len(data) != 8 {
			return sizeErr(data, v)
		}
		*v = math.Float64frombits(u)
	case *string:
		rest, n, ok := util.DecodeVarint(data)
		if !ok || uint64(len(rest)) != n {
			return sizeErr(data, v)
		}
		*v = string(rest)
	case *[]byte:
		rest, n, ok := util.DecodeVarint(data)
		if !ok || uint64(len(rest)) != n {
			return sizeErr(data, v)
		}
		*v = append([]byte(nil), rest...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(data)
	default:
		return fmt.Errorf("codec: binary: cannot unmarshal into %T", v)
	}
	return nil
}

func sizeErr(data []byte, v any) error {
	return fmt.Errorf("codec: binary: %d bytes for %T", len(data), v)
}
