// Package store defines the minimal byte-oriented key-value interface the
// collection structures are built on, along with several backends for it.
//
// The interface is deliberately small: get, set, and delete on opaque byte
// keys. There is no ordering, range scan, or iteration primitive; anything
// higher level has to be synthesized from independent key/value pairs.
package store

// A Store maps byte keys to byte values.
//
// Get returns nil for a missing key. Values must be non-empty; storing an
// empty value is indistinguishable from absence on some backends.
type Store interface {
	Get(key []byte) ([]byte, error)
	Set(key, val []byte) error
	Delete(key []byte) error
}
