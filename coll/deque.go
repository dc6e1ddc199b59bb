package coll

import (
	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/store"
)

// A Deque is a List re-based through a logical head offset, adding
// constant-cost push and pop at the front. Logical position pos lives at
// physical position offset+pos; the offset wraps around uint32, which is
// harmless because only the window [offset, offset+len) is ever addressed.
type Deque[T any] struct {
	p   pages
	cdc codec.Codec
}

func NewDeque[T any](namespace []byte, opts ...Option) *Deque[T] {
	o := newOptions(1, opts)
	return &Deque[T]{
		p:   newPages(namespace, nil, lenKey, o.pageSize),
		cdc: o.cdc,
	}
}

// AddSuffix returns a Deque addressing an independent child namespace.
func (d *Deque[T]) AddSuffix(suffix []byte) *Deque[T] {
	return &Deque[T]{
		p:   newPages(childNamespace(d.p.prefix, suffix), nil, lenKey, d.p.size),
		cdc: d.cdc,
	}
}

func (d *Deque[T]) offsetKey() []byte {
	key := make([]byte, 0, len(d.p.prefix)+len(offKey))
	return append(append(key, d.p.prefix...), offKey...)
}

func (d *Deque[T]) offset(st store.Store) (uint32, error) {
	off, _, err := readU32(st, d.offsetKey())
	return off, err
}

func (d *Deque[T]) setOffset(st store.Store, off uint32) error {
	return writeU32(st, d.offsetKey(), off)
}

func (d *Deque[T]) Len(st store.Store) (uint32, error) {
	return d.p.length(st)
}

func (d *Deque[T]) decode(raw []byte, pos uint32) (T, error) {
	var v T
	if raw == nil {
		return v, corruptErr("deque %v: missing element %d", d.p.prefix, pos)
	}
	err := d.cdc.Unmarshal(raw, &v)
	if err != nil {
		return v, decodeErr(err)
	}
	return v, nil
}

// Get returns the element at logical position pos, or ok false if pos is
// past the end.
func (d *Deque[T]) Get(st store.Store, pos uint32) (T, bool, error) {
	var zero T
	n, err := d.p.length(st)
	if err != nil || pos >= n {
		return zero, false, err
	}
	off, err := d.offset(st)
	if err != nil {
		return zero, false, err
	}
	raw, err := d.p.getEntry(st, off+pos)
	if err != nil {
		return zero, false, err
	}
	v, err := d.decode(raw, pos)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Set overwrites the element at logical position pos, failing with
// ErrOutOfBounds if pos is past the end.
func (d *Deque[T]) Set(st store.Store, pos uint32, v T) error {
	n, err := d.p.length(st)
	if err != nil {
		return err
	}
	if pos >= n {
		return ErrOutOfBounds
	}
	off, err := d.offset(st)
	if err != nil {
		return err
	}
	raw, err := d.cdc.Marshal(v)
	if err != nil {
		return err
	}
	return d.p.setEntry(st, off+pos, raw)
}

func (d *Deque[T]) PushBack(st store.Store, v T) error {
	raw, err := d.cdc.Marshal(v)
	if err != nil {
		return err
	}
	n, err := d.p.length(st)
	if err != nil {
		return err
	}
	off, err := d.offset(st)
	if err != nil {
		return err
	}
	err = d.p.setEntry(st, off+n, raw)
	if err != nil {
		return err
	}
	return d.p.setLength(st, n+1)
}

func (d *Deque[T]) PushFront(st store.Store, v T) error {
	raw, err := d.cdc.Marshal(v)
	if err != nil {
		return err
	}
	n, err := d.p.length(st)
	if err != nil {
		return err
	}
	off, err := d.offset(st)
	if err != nil {
		return err
	}
	off -= 1 // wraps
	err = d.p.setEntry(st, off, raw)
	if err != nil {
		return err
	}
	err = d.setOffset(st, off)
	if err != nil {
		return err
	}
	return d.p.setLength(st, n+1)
}

func (d *Deque[T]) PopBack(st store.Store) (T, error) {
	var zero T
	n, err := d.p.length(st)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, ErrEmpty
	}
	off, err := d.offset(st)
	if err != nil {
		return zero, err
	}
	raw, err := d.p.getEntry(st, off+n-1)
	if err != nil {
		return zero, err
	}
	v, err := d.decode(raw, n-1)
	if err != nil {
		return zero, err
	}
	return v, d.p.setLength(st, n-1)
}

func (d *Deque[T]) PopFront(st store.Store) (T, error) {
	var zero T
	n, err := d.p.length(st)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, ErrEmpty
	}
	off, err := d.offset(st)
	if err != nil {
		return zero, err
	}
	raw, err := d.p.getEntry(st, off)
	if err != nil {
		return zero, err
	}
	v, err := d.decode(raw, 0)
	if err != nil {
		return zero, err
	}
	err = d.setOffset(st, off+1)
	if err != nil {
		return zero, err
	}
	return v, d.p.setLength(st, n-1)
}

// Remove removes and returns the element at logical position pos, shifting
// the shorter side of the deque toward the gap. Cost is proportional to
// the distance to the nearer end.
func (d *Deque[T]) Remove(st store.Store, pos uint32) (T, error) {
	var zero T
	n, err := d.p.length(st)
	if err != nil {
		return zero, err
	}
	if pos >= n {
		return zero, ErrOutOfBounds
	}
	off, err := d.offset(st)
	if err != nil {
		return zero, err
	}
	raw, err := d.p.getEntry(st, off+pos)
	if err != nil {
		return zero, err
	}
	v, err := d.decode(raw, pos)
	if err != nil {
		return zero, err
	}

	if pos < n-pos-1 {
		// Front side is shorter: shift [0, pos) up and advance the offset.
		for i := pos; i > 0; i-- {
			raw, err = d.p.getEntry(st, off+i-1)
			if err != nil {
				return zero, err
			}
			err = d.p.setEntry(st, off+i, raw)
			if err != nil {
				return zero, err
			}
		}
		err = d.setOffset(st, off+1)
		if err != nil {
			return zero, err
		}
	} else {
		for i := pos; i+1 < n; i++ {
			raw, err = d.p.getEntry(st, off+i+1)
			if err != nil {
				return zero, err
			}
			err = d.p.setEntry(st, off+i, raw)
			if err != nil {
				return zero, err
			}
		}
	}
	return v, d.p.setLength(st, n-1)
}

// Clear resets the deque to zero length and zero offset in two writes,
// leaving the old elements' bytes behind unreachable.
func (d *Deque[T]) Clear(st store.Store) error {
	err := d.p.setLength(st, 0)
	if err != nil {
		return err
	}
	return d.setOffset(st, 0)
}

// Iter returns a lazy front-to-back iterator. Length and offset are
// snapshotted at construction; call Iter again to restart.
func (d *Deque[T]) Iter(st store.Store) (*DequeIter[T], error) {
	n, err := d.p.length(st)
	if err != nil {
		return nil, err
	}
	off, err := d.offset(st)
	if err != nil {
		return nil, err
	}
	return &DequeIter[T]{
		d:   d,
		pr:  pageReader{p: d.p, st: st},
		off: off,
		end: n,
	}, nil
}

// Paging returns the elements of the pageIdx-th group of pageSize logical
// positions; past the end it returns an empty slice, never an error.
func (d *Deque[T]) Paging(st store.Store, pageIdx, pageSize uint32) ([]T, error) {
	n, err := d.p.length(st)
	if err != nil {
		return nil, err
	}
	// 64-bit so a huge pageIdx clips to empty instead of wrapping.
	start64 := uint64(pageIdx) * uint64(pageSize)
	if start64 >= uint64(n) {
		return nil, nil
	}
	start := uint32(start64)
	end := start + pageSize
	if end > n || end < start {
		end = n
	}
	off, err := d.offset(st)
	if err != nil {
		return nil, err
	}

	pr := pageReader{p: d.p, st: st}
	vs := make([]T, 0, end-start)
	for pos := start; pos < end; pos++ {
		raw, err := pr.entry(off + pos)
		if err != nil {
			return nil, err
		}
		v, err := d.decode(raw, pos)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

type DequeIter[T any] struct {
	d   *Deque[T]
	pr  pageReader
	off uint32
	pos uint32
	end uint32
}

// Next returns the next element front to back, or ok false when the
// iterator is exhausted.
func (it *DequeIter[T]) Next() (T, bool, error) {
	var zero T
	if it.pos >= it.end {
		return zero, false, nil
	}
	raw, err := it.pr.entry(it.off + it.pos)
	if err != nil {
		return zero, false, err
	}
	v, err := it.d.decode(raw, it.pos)
	if err != nil {
		return zero, false, err
	}
	it.pos += 1
	return v, true, nil
}
