// Package codec provides the pluggable serialization used by the collection
// structures. A codec must be deterministic -- identical logical values must
// encode to identical bytes -- and Unmarshal(Marshal(v)) must reproduce v.
//
// Two codecs are provided: Binary, a compact fixed-layout encoding, and
// JSON, a self-describing one. Binary is the default for collections since
// storage is charged per byte touched.
package codec

// A Codec serializes values to bytes and back. Marshal takes a value;
// Unmarshal takes a non-nil pointer to the value's type.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
