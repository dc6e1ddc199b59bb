package coll

import (
	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/store"
)

// A List is an append-only-shaped list: push and pop at the tail are
// constant cost, random access is constant cost, and removal at an
// arbitrary position is available as a deliberately expensive escape
// hatch.
type List[T any] struct {
	p   pages
	cdc codec.Codec
}

// NewList returns a list descriptor for the given namespace. The default
// page size is 1; a larger page size batches consecutive elements into one
// storage record.
func NewList[T any](namespace []byte, opts ...Option) *List[T] {
	o := newOptions(1, opts)
	return &List[T]{
		p:   newPages(namespace, nil, lenKey, o.pageSize),
		cdc: o.cdc,
	}
}

// AddSuffix returns a List addressing an independent child namespace.
func (l *List[T]) AddSuffix(suffix []byte) *List[T] {
	return &List[T]{
		p:   newPages(childNamespace(l.p.prefix, suffix), nil, lenKey, l.p.size),
		cdc: l.cdc,
	}
}

func (l *List[T]) Len(st store.Store) (uint32, error) {
	return l.p.length(st)
}

func (l *List[T]) decode(raw []byte, pos uint32) (T, error) {
	var v T
	if raw == nil {
		return v, corruptErr("list %v: missing element %d", l.p.prefix, pos)
	}
	err := l.cdc.Unmarshal(raw, &v)
	if err != nil {
		return v, decodeErr(err)
	}
	return v, nil
}

// Get returns the element at pos, or ok false if pos is past the end.
func (l *List[T]) Get(st store.Store, pos uint32) (T, bool, error) {
	var zero T
	n, err := l.p.length(st)
	if err != nil || pos >= n {
		return zero, false, err
	}
	raw, err := l.p.getEntry(st, pos)
	if err != nil {
		return zero, false, err
	}
	v, err := l.decode(raw, pos)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Set overwrites the element at pos, failing with ErrOutOfBounds if pos is
// past the end.
func (l *List[T]) Set(st store.Store, pos uint32, v T) error {
	n, err := l.p.length(st)
	if err != nil {
		return err
	}
	if pos >= n {
		return ErrOutOfBounds
	}
	raw, err := l.cdc.Marshal(v)
	if err != nil {
		return err
	}
	return l.p.setEntry(st, pos, raw)
}

// Push appends v and returns its position.
func (l *List[T]) Push(st store.Store, v T) (uint32, error) {
	raw, err := l.cdc.Marshal(v)
	if err != nil {
		return 0, err
	}
	n, err := l.p.length(st)
	if err != nil {
		return 0, err
	}
	err = l.p.setEntry(st, n, raw)
	if err != nil {
		return 0, err
	}
	return n, l.p.setLength(st, n+1)
}

// Pop removes and returns the last element, failing with ErrEmpty on an
// empty list. The element's bytes are left behind unreachable.
func (l *List[T]) Pop(st store.Store) (T, error) {
	var zero T
	n, err := l.p.length(st)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, ErrEmpty
	}
	raw, err := l.p.getEntry(st, n-1)
	if err != nil {
		return zero, err
	}
	v, err := l.decode(raw, n-1)
	if err != nil {
		return zero, err
	}
	return v, l.p.setLength(st, n-1)
}

// Remove removes and returns the element at pos, shifting every later
// element down by one. This costs a storage read and write per shifted
// element; prefer Pop, or a Keymap when arbitrary removal is routine.
func (l *List[T]) Remove(st store.Store, pos uint32) (T, error) {
	var zero T
	n, err := l.p.length(st)
	if err != nil {
		return zero, err
	}
	if pos >= n {
		return zero, ErrOutOfBounds
	}
	raw, err := l.p.getEntry(st, pos)
	if err != nil {
		return zero, err
	}
	v, err := l.decode(raw, pos)
	if err != nil {
		return zero, err
	}

	for i := pos; i+1 < n; i++ {
		raw, err = l.p.getEntry(st, i+1)
		if err != nil {
			return zero, err
		}
		err = l.p.setEntry(st, i, raw)
		if err != nil {
			return zero, err
		}
	}
	return v, l.p.setLength(st, n-1)
}

// Clear resets the list to zero length in one write. The old elements'
// bytes become unreachable and are never re-surfaced.
func (l *List[T]) Clear(st store.Store) error {
	return l.p.setLength(st, 0)
}

// Iter returns a lazy iterator over the list. The length is snapshotted at
// construction; call Iter again to restart.
func (l *List[T]) Iter(st store.Store) (*ListIter[T], error) {
	n, err := l.p.length(st)
	if err != nil {
		return nil, err
	}
	return &ListIter[T]{
		l:   l,
		pr:  pageReader{p: l.p, st: st},
		end: n,
	}, nil
}

// Paging returns the elements of the pageIdx-th group of pageSize
// positions. Past the end it returns an empty slice, never an error.
func (l *List[T]) Paging(st store.Store, pageIdx, pageSize uint32) ([]T, error) {
	n, err := l.p.length(st)
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

	pr := pageReader{p: l.p, st: st}
	vs := make([]T, 0, end-start)
	for pos := start; pos < end; pos++ {
		raw, err := pr.entry(pos)
		if err != nil {
			return nil, err
		}
		v, err := l.decode(raw, pos)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

type ListIter[T any] struct {
	l   *List[T]
	pr  pageReader
	pos uint32
	end uint32
}

// Next returns the next element, or ok false when the iterator is
// exhausted.
func (it *ListIter[T]) Next() (T, bool, error) {
	var zero T
	if it.pos >= it.end {
		return zero, false, nil
	}
	raw, err := it.pr.entry(it.pos)
	if err != nil {
		return zero, false, err
	}
	v, err := it.l.decode(raw, it.pos)
	if err != nil {
		return zero, false, err
	}
	it.pos += 1
	return v, true, nil
}
