// Package coll implements collection structures -- single items, append
// lists, deques, iterable maps and sets, slot maps, and a max-heap -- on
// top of the minimal byte key-value interface of package store.
//
// The underlying store has no ordering or iteration primitive and charges
// every operation roughly by the bytes it touches, so each structure is
// synthesized from independent key/value pairs and keeps its records as
// small as the bookkeeping allows. Length counters are stored under
// reserved keys so that a length lookup never scans; positions are grouped
// into fixed-size pages so that sequential iteration costs one storage
// read per page rather than one per element.
//
// A collection value is a descriptor: it holds a namespace and a codec but
// no storage. Every operation takes the store to operate on, and the same
// descriptor may be used against any number of stores. AddSuffix derives a
// descriptor for an independent child namespace using length-prefixed
// concatenation, so distinct suffix chains can never collide.
//
// Collections are not safe for concurrent mutation; the intended host
// serializes calls to completion.
package coll

import (
	"errors"
	"fmt"
	"math"

	"github.com/stowkv/stowkv/codec"
)

var (
	ErrOutOfBounds = errors.New("coll: out of bounds")
	ErrEmpty       = errors.New("coll: empty collection")
	ErrKeyNotFound = errors.New("coll: key not found")
	ErrStaleIndex  = errors.New("coll: stale or invalid index")
	ErrUnsupported = errors.New("coll: operation not supported")
	ErrDecode      = errors.New("coll: decode failed")
)

func decodeErr(err error) error {
	return fmt.Errorf("%w: %s", ErrDecode, err)
}

func corruptErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

type options struct {
	cdc      codec.Codec
	pageSize uint32
	noIter   bool
}

type Option func(*options)

// WithCodec selects the codec used to serialize elements (and keys, for
// maps and sets). The default is codec.Binary.
func WithCodec(cdc codec.Codec) Option {
	return func(o *options) {
		o.cdc = cdc
	}
}

// WithPageSize sets how many consecutive positions are serialized together
// in one storage record. It affects only the batching of storage
// operations, never behavior. Panics if n is zero.
func WithPageSize(n uint32) Option {
	if n == 0 {
		panic("coll: page size must be positive")
	}
	return func(o *options) {
		o.pageSize = n
	}
}

// WithoutIteration drops the iteration bookkeeping of a Keymap or Keyset:
// no length counter, no index pages, every operation a single key-derived
// storage access. Len, Iter, and Paging on such a collection fail with
// ErrUnsupported.
func WithoutIteration() Option {
	return func(o *options) {
		o.noIter = true
	}
}

func newOptions(defPageSize uint32, opts []Option) options {
	o := options{
		cdc:      codec.Binary{},
		pageSize: defPageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// childNamespace derives an independent namespace from prefix by appending
// the suffix preceded by its 2-byte big-endian length. The length prefix
// keeps distinct suffix chains distinct: "ab"+"c" and "a"+"bc" produce
// different namespaces. Panics if the suffix does not fit the 2-byte
// length; a truncated length would let distinct suffixes collide.
func childNamespace(prefix, suffix []byte) []byte {
	if len(suffix) > math.MaxUint16 {
		panic("coll: suffix longer than 65535 bytes")
	}
	ns := make([]byte, 0, len(prefix)+2+len(suffix))
	ns = append(ns, prefix...)
	ns = append(ns, byte(len(suffix)>>8), byte(len(suffix)))
	return append(ns, suffix...)
}
