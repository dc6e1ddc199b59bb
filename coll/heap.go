package coll

import (
	"cmp"

	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/store"
)

// A Heap is a binary max-heap laid out as an implicit tree over list
// positions: the children of position i are 2i+1 and 2i+2. Insert and
// Remove cost a logarithmic number of storage operations; GetMax is
// constant.
type Heap[T any] struct {
	p       pages
	cdc     codec.Codec
	compare func(a, b T) int
}

// NewHeap returns a heap descriptor for an ordered element type, using
// the type's natural order. The default page size is 1.
func NewHeap[T cmp.Ordered](namespace []byte, opts ...Option) *Heap[T] {
	return NewHeapFunc[T](namespace, cmp.Compare[T], opts...)
}

// NewHeapFunc returns a heap descriptor ordered by compare, which must
// return a negative, zero, or positive value as a is less than, equal to,
// or greater than b.
func NewHeapFunc[T any](namespace []byte, compare func(a, b T) int, opts ...Option) *Heap[T] {
	o := newOptions(1, opts)
	return &Heap[T]{
		p:       newPages(namespace, nil, lenKey, o.pageSize),
		cdc:     o.cdc,
		compare: compare,
	}
}

// AddSuffix returns a Heap addressing an independent child namespace.
func (h *Heap[T]) AddSuffix(suffix []byte) *Heap[T] {
	return &Heap[T]{
		p:       newPages(childNamespace(h.p.prefix, suffix), nil, lenKey, h.p.size),
		cdc:     h.cdc,
		compare: h.compare,
	}
}

func (h *Heap[T]) Len(st store.Store) (uint32, error) {
	return h.p.length(st)
}

func (h *Heap[T]) IsEmpty(st store.Store) (bool, error) {
	n, err := h.p.length(st)
	return n == 0, err
}

func (h *Heap[T]) decode(raw []byte, pos uint32) (T, error) {
	var v T
	if raw == nil {
		return v, corruptErr("heap %v: missing element %d", h.p.prefix, pos)
	}
	err := h.cdc.Unmarshal(raw, &v)
	if err != nil {
		return v, decodeErr(err)
	}
	return v, nil
}

// Insert adds v, restoring the heap property by swapping it upward while
// it exceeds its parent.
func (h *Heap[T]) Insert(st store.Store, v T) error {
	raw, err := h.cdc.Marshal(v)
	if err != nil {
		return err
	}
	n, err := h.p.length(st)
	if err != nil {
		return err
	}
	err = h.p.setEntry(st, n, raw)
	if err != nil {
		return err
	}

	cur := n
	for cur > 0 {
		parent := (cur - 1) / 2
		praw, err := h.p.getEntry(st, parent)
		if err != nil {
			return err
		}
		pv, err := h.decode(praw, parent)
		if err != nil {
			return err
		}
		if h.compare(v, pv) <= 0 {
			break
		}
		err = h.p.setEntry(st, parent, raw)
		if err != nil {
			return err
		}
		err = h.p.setEntry(st, cur, praw)
		if err != nil {
			return err
		}
		cur = parent
	}
	return h.p.setLength(st, n+1)
}

// GetMax returns the largest element without removing it, failing with
// ErrEmpty on an empty heap.
func (h *Heap[T]) GetMax(st store.Store) (T, error) {
	var zero T
	n, err := h.p.length(st)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, ErrEmpty
	}
	raw, err := h.p.getEntry(st, 0)
	if err != nil {
		return zero, err
	}
	return h.decode(raw, 0)
}

// Remove removes and returns the largest element, failing with ErrEmpty
// on an empty heap. The last element replaces the root and is swapped
// downward, toward the left child when the children compare equal.
func (h *Heap[T]) Remove(st store.Store) (T, error) {
	var zero T
	n, err := h.p.length(st)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, ErrEmpty
	}
	rootRaw, err := h.p.getEntry(st, 0)
	if err != nil {
		return zero, err
	}
	root, err := h.decode(rootRaw, 0)
	if err != nil {
		return zero, err
	}
	n -= 1
	if n == 0 {
		return root, h.p.setLength(st, 0)
	}

	curRaw, err := h.p.getEntry(st, n)
	if err != nil {
		return zero, err
	}
	cv, err := h.decode(curRaw, n)
	if err != nil {
		return zero, err
	}
	err = h.p.setEntry(st, 0, curRaw)
	if err != nil {
		return zero, err
	}

	cur := uint32(0)
	for {
		left := 2*cur + 1
		if left >= n {
			break
		}
		bestPos := left
		bestRaw, err := h.p.getEntry(st, left)
		if err != nil {
			return zero, err
		}
		bv, err := h.decode(bestRaw, left)
		if err != nil {
			return zero, err
		}
		if right := left + 1; right < n {
			rraw, err := h.p.getEntry(st, right)
			if err != nil {
				return zero, err
			}
			rv, err := h.decode(rraw, right)
			if err != nil {
				return zero, err
			}
			if h.compare(rv, bv) > 0 {
				bestPos = right
				bestRaw = rraw
				bv = rv
			}
		}
		if h.compare(bv, cv) <= 0 {
			break
		}
		err = h.p.setEntry(st, cur, bestRaw)
		if err != nil {
			return zero, err
		}
		err = h.p.setEntry(st, bestPos, curRaw)
		if err != nil {
			return zero, err
		}
		cur = bestPos
	}
	return root, h.p.setLength(st, n)
}

// Clear resets the heap to zero length in one write, leaving the old
// elements' bytes behind unreachable.
func (h *Heap[T]) Clear(st store.Store) error {
	return h.p.setLength(st, 0)
}
