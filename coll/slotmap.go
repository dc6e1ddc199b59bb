package coll

import (
	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/store"
	"github.com/stowkv/stowkv/util"
)

// noFreeSlot terminates the free list.
const noFreeSlot = uint32(0xFFFFFFFF)

const (
	slotFree     = byte(0)
	slotOccupied = byte(1)
)

// Slot records live under 4-byte big-endian slot numbers, so the meta
// keys must not be 4 bytes long.
var (
	capKey  = []byte("cap")
	headKey = []byte("hd")
)

// An Index addresses a SlotMap entry. It stays valid until the entry is
// removed; after that the Index is stale, Get and Contains report the
// entry as absent, and Set and Remove fail with ErrStaleIndex.
type Index struct {
	Slot       uint32
	Generation uint64
}

// A SlotMap stores values in numbered slots and hands out generational
// indexes. Removing an entry bumps the slot's generation and threads the
// slot onto a free list; a later insert reuses the slot under the new
// generation, so indexes can be held long-term without ABA confusion.
//
// Each slot record is one storage value: a status byte, the 8-byte
// generation, then either the value bytes (occupied) or the next free
// slot (free).
type SlotMap[T any] struct {
	prefix []byte
	cdc    codec.Codec
}

func NewSlotMap[T any](namespace []byte, opts ...Option) *SlotMap[T] {
	o := newOptions(1, opts)
	return &SlotMap[T]{
		prefix: namespace,
		cdc:    o.cdc,
	}
}

// AddSuffix returns a SlotMap addressing an independent child namespace.
func (sm *SlotMap[T]) AddSuffix(suffix []byte) *SlotMap[T] {
	return &SlotMap[T]{
		prefix: childNamespace(sm.prefix, suffix),
		cdc:    sm.cdc,
	}
}

func (sm *SlotMap[T]) metaKey(name []byte) []byte {
	key := make([]byte, 0, len(sm.prefix)+len(name))
	return append(append(key, sm.prefix...), name...)
}

func (sm *SlotMap[T]) slotKey(slot uint32) []byte {
	key := make([]byte, 0, len(sm.prefix)+4)
	return util.EncodeUint32(append(key, sm.prefix...), slot)
}

// Len returns the number of occupied slots.
func (sm *SlotMap[T]) Len(st store.Store) (uint32, error) {
	n, _, err := readU32(st, sm.metaKey(lenKey))
	return n, err
}

func (sm *SlotMap[T]) IsEmpty(st store.Store) (bool, error) {
	n, err := sm.Len(st)
	return n == 0, err
}

// Cap returns the number of slots ever allocated, occupied or free. It
// bounds the slot numbers an iterator will visit.
func (sm *SlotMap[T]) Cap(st store.Store) (uint32, error) {
	c, _, err := readU32(st, sm.metaKey(capKey))
	return c, err
}

func (sm *SlotMap[T]) freeHead(st store.Store) (uint32, error) {
	head, ok, err := readU32(st, sm.metaKey(headKey))
	if err != nil {
		return 0, err
	}
	if !ok {
		return noFreeSlot, nil
	}
	return head, nil
}

func slotRecord(status byte, gen uint64, payload []byte) []byte {
	rec := make([]byte, 0, 9+len(payload))
	rec = append(rec, status)
	rec = util.EncodeUint64(rec, gen)
	return append(rec, payload...)
}

// parseSlot splits a slot record into status, generation, and payload.
func (sm *SlotMap[T]) parseSlot(raw []byte, slot uint32) (byte, uint64, []byte, error) {
	if len(raw) < 9 {
		return 0, 0, nil, corruptErr("slotmap %v: slot %d record %d bytes",
			sm.prefix, slot, len(raw))
	}
	gen, _ := util.DecodeUint64(raw[1:9])
	return raw[0], gen, raw[9:], nil
}

// occupied loads slot idx.Slot and validates idx against it, returning the
// value bytes. A never-allocated slot, a free slot, or a generation
// mismatch all mean the index no longer addresses a live entry.
func (sm *SlotMap[T]) occupied(st store.Store, idx Index) ([]byte, error) {
	raw, err := st.Get(sm.slotKey(idx.Slot))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrStaleIndex
	}
	status, gen, payload, err := sm.parseSlot(raw, idx.Slot)
	if err != nil {
		return nil, err
	}
	if status != slotOccupied || gen != idx.Generation {
		return nil, ErrStaleIndex
	}
	return payload, nil
}

// Insert stores v in a free slot, reusing the most recently freed slot if
// any, and returns its Index.
func (sm *SlotMap[T]) Insert(st store.Store, v T) (Index, error) {
	vb, err := sm.cdc.Marshal(v)
	if err != nil {
		return Index{}, err
	}
	n, err := sm.Len(st)
	if err != nil {
		return Index{}, err
	}
	head, err := sm.freeHead(st)
	if err != nil {
		return Index{}, err
	}

	if head == noFreeSlot {
		// No free slot: grow by one.
		c, err := sm.Cap(st)
		if err != nil {
			return Index{}, err
		}
		err = st.Set(sm.slotKey(c), slotRecord(slotOccupied, 0, vb))
		if err != nil {
			return Index{}, err
		}
		err = writeU32(st, sm.metaKey(capKey), c+1)
		if err != nil {
			return Index{}, err
		}
		err = writeU32(st, sm.metaKey(lenKey), n+1)
		if err != nil {
			return Index{}, err
		}
		return Index{Slot: c, Generation: 0}, nil
	}

	raw, err := st.Get(sm.slotKey(head))
	if err != nil {
		return Index{}, err
	}
	if raw == nil {
		return Index{}, corruptErr("slotmap %v: free head %d missing", sm.prefix, head)
	}
	status, gen, payload, err := sm.parseSlot(raw, head)
	if err != nil {
		return Index{}, err
	}
	if status != slotFree {
		return Index{}, corruptErr("slotmap %v: free head %d occupied", sm.prefix, head)
	}
	next, ok := util.DecodeUint32(payload)
	if !ok {
		return Index{}, corruptErr("slotmap %v: slot %d free link undecodable",
			sm.prefix, head)
	}

	err = st.Set(sm.slotKey(head), slotRecord(slotOccupied, gen, vb))
	if err != nil {
		return Index{}, err
	}
	err = writeU32(st, sm.metaKey(headKey), next)
	if err != nil {
		return Index{}, err
	}
	err = writeU32(st, sm.metaKey(lenKey), n+1)
	if err != nil {
		return Index{}, err
	}
	return Index{Slot: head, Generation: gen}, nil
}

// Get returns the value addressed by idx, or ok false if idx no longer
// addresses a live entry.
func (sm *SlotMap[T]) Get(st store.Store, idx Index) (T, bool, error) {
	var zero T
	payload, err := sm.occupied(st, idx)
	if err == ErrStaleIndex {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	var v T
	err = sm.cdc.Unmarshal(payload, &v)
	if err != nil {
		return zero, false, decodeErr(err)
	}
	return v, true, nil
}

// Contains reports whether idx addresses a live entry, without decoding
// the value.
func (sm *SlotMap[T]) Contains(st store.Store, idx Index) (bool, error) {
	_, err := sm.occupied(st, idx)
	if err == ErrStaleIndex {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set overwrites the value addressed by idx, failing with ErrStaleIndex
// if the entry was removed.
func (sm *SlotMap[T]) Set(st store.Store, idx Index, v T) error {
	_, err := sm.occupied(st, idx)
	if err != nil {
		return err
	}
	vb, err := sm.cdc.Marshal(v)
	if err != nil {
		return err
	}
	return st.Set(sm.slotKey(idx.Slot), slotRecord(slotOccupied, idx.Generation, vb))
}

// Remove removes and returns the value addressed by idx. The slot's
// generation is bumped and the slot pushed onto the free list, so idx and
// any copies of it are stale from here on. Removing twice fails with
// ErrStaleIndex.
func (sm *SlotMap[T]) Remove(st store.Store, idx Index) (T, error) {
	var zero T
	payload, err := sm.occupied(st, idx)
	if err != nil {
		return zero, err
	}
	var v T
	err = sm.cdc.Unmarshal(payload, &v)
	if err != nil {
		return zero, decodeErr(err)
	}

	n, err := sm.Len(st)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, corruptErr("slotmap %v: occupied slot %d, length 0",
			sm.prefix, idx.Slot)
	}
	head, err := sm.freeHead(st)
	if err != nil {
		return zero, err
	}

	link := util.EncodeUint32(nil, head)
	err = st.Set(sm.slotKey(idx.Slot), slotRecord(slotFree, idx.Generation+1, link))
	if err != nil {
		return zero, err
	}
	err = writeU32(st, sm.metaKey(headKey), idx.Slot)
	if err != nil {
		return zero, err
	}
	return v, writeU32(st, sm.metaKey(lenKey), n-1)
}

// Iter returns a lazy iterator over the live entries in slot order. The
// capacity is snapshotted at construction; call Iter again to restart.
func (sm *SlotMap[T]) Iter(st store.Store) (*SlotMapIter[T], error) {
	c, err := sm.Cap(st)
	if err != nil {
		return nil, err
	}
	return &SlotMapIter[T]{
		sm:  sm,
		st:  st,
		end: c,
	}, nil
}

type SlotMapIter[T any] struct {
	sm   *SlotMap[T]
	st   store.Store
	slot uint32
	end  uint32
}

// Next returns the next live entry and its Index, skipping free slots, or
// ok false when the iterator is exhausted.
func (it *SlotMapIter[T]) Next() (Index, T, bool, error) {
	var zero T
	for it.slot < it.end {
		slot := it.slot
		it.slot += 1

		raw, err := it.st.Get(it.sm.slotKey(slot))
		if err != nil {
			return Index{}, zero, false, err
		}
		if raw == nil {
			return Index{}, zero, false,
				corruptErr("slotmap %v: missing slot %d", it.sm.prefix, slot)
		}
		status, gen, payload, err := it.sm.parseSlot(raw, slot)
		if err != nil {
			return Index{}, zero, false, err
		}
		if status != slotOccupied {
			continue
		}
		var v T
		err = it.sm.cdc.Unmarshal(payload, &v)
		if err != nil {
			return Index{}, zero, false, decodeErr(err)
		}
		return Index{Slot: slot, Generation: gen}, v, true, nil
	}
	return Index{}, zero, false, nil
}
