package coll

import (
	"bytes"

	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/store"
	"github.com/stowkv/stowkv/util"
)

// kmap is the raw machinery shared by Keymap and Keyset: a record per key
// under a key-derived storage key, plus -- when iteration is enabled -- a
// length counter and index pages listing the serialized keys in insertion
// order, and a position embedded in each record pointing back at its index
// entry.
//
// The index entry at a record's position and the position stored in the
// record form a bijection over the live keys; both sides are maintained
// together in one code path (insertRaw/removeRaw) so neither can exist
// without the other.
type kmap struct {
	prefix []byte
	p      pages
	noIter bool
}

func newKmap(namespace []byte, pageSize uint32, noIter bool) kmap {
	return kmap{
		prefix: namespace,
		p:      newPages(namespace, indexesKey, mapLenKey, pageSize),
		noIter: noIter,
	}
}

func (m kmap) child(suffix []byte) kmap {
	return newKmap(childNamespace(m.prefix, suffix), m.p.size, m.noIter)
}

func (m kmap) recordKey(kb []byte) []byte {
	key := make([]byte, 0, len(m.prefix)+len(kb))
	return append(append(key, m.prefix...), kb...)
}

// getRaw returns a key's payload with the position bookkeeping stripped.
func (m kmap) getRaw(st store.Store, kb []byte) ([]byte, bool, error) {
	raw, err := st.Get(m.recordKey(kb))
	if err != nil || raw == nil {
		return nil, false, err
	}
	if m.noIter {
		return raw, true, nil
	}
	payload, _, ok := util.DecodeVarint(raw)
	if !ok {
		return nil, false, corruptErr("map %v: record undecodable", m.prefix)
	}
	return payload, true, nil
}

func (m kmap) contains(st store.Store, kb []byte) (bool, error) {
	raw, err := st.Get(m.recordKey(kb))
	return raw != nil, err
}

func (m kmap) length(st store.Store) (uint32, error) {
	if m.noIter {
		return 0, ErrUnsupported
	}
	return m.p.length(st)
}

// insertRaw stores payload under kb and returns whether kb was newly
// added. An existing key keeps its position; a new key is appended to the
// index pages. The record is written before the index entry so a position
// can never point at a missing record.
func (m kmap) insertRaw(st store.Store, kb, payload []byte) (bool, error) {
	rk := m.recordKey(kb)
	if m.noIter {
		return false, st.Set(rk, payload)
	}

	raw, err := st.Get(rk)
	if err != nil {
		return false, err
	}
	if raw != nil {
		_, pos, ok := util.DecodeVarint(raw)
		if !ok {
			return false, corruptErr("map %v: record undecodable", m.prefix)
		}
		return false, st.Set(rk, append(util.EncodeVarint(nil, pos), payload...))
	}

	pos, err := m.p.length(st)
	if err != nil {
		return false, err
	}
	err = st.Set(rk, append(util.EncodeVarint(nil, uint64(pos)), payload...))
	if err != nil {
		return false, err
	}

	page := pos / m.p.size
	entries, err := m.p.loadPage(st, page)
	if err != nil {
		return false, err
	}
	err = m.p.storePage(st, page, append(entries, kb))
	if err != nil {
		return false, err
	}
	return true, m.p.setLength(st, pos+1)
}

// removeRaw deletes kb's record. With iteration enabled the vacated
// position is filled by relocating the key at position length-1, keeping
// the index dense at the cost of reordering; iteration order is insertion
// order only until the first removal.
func (m kmap) removeRaw(st store.Store, kb []byte) error {
	rk := m.recordKey(kb)
	raw, err := st.Get(rk)
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrKeyNotFound
	}
	if m.noIter {
		return st.Delete(rk)
	}

	_, pos64, ok := util.DecodeVarint(raw)
	if !ok {
		return corruptErr("map %v: record undecodable", m.prefix)
	}
	pos := uint32(pos64)

	n, err := m.p.length(st)
	if err != nil {
		return err
	}
	if pos >= n {
		return corruptErr("map %v: record position %d, length %d", m.prefix, pos, n)
	}
	newLen := n - 1

	page := pos / m.p.size
	idx := pos % m.p.size
	entries, err := m.p.loadPage(st, page)
	if err != nil {
		return err
	}
	if uint32(len(entries)) <= idx || !bytes.Equal(entries[idx], kb) {
		return corruptErr("map %v: index entry mismatch at %d", m.prefix, pos)
	}

	if pos == newLen {
		// Removing the last key: no relocation needed.
		err = m.p.storePage(st, page, entries[:len(entries)-1])
		if err != nil {
			return err
		}
		err = st.Delete(rk)
		if err != nil {
			return err
		}
		return m.p.setLength(st, newLen)
	}

	lastPage := newLen / m.p.size
	var lastKb []byte
	if lastPage == page {
		lastKb = entries[len(entries)-1]
		entries = entries[:len(entries)-1]
		entries[idx] = lastKb
		err = m.repoint(st, lastKb, pos)
		if err != nil {
			return err
		}
		err = m.p.storePage(st, page, entries)
		if err != nil {
			return err
		}
	} else {
		lastEntries, err := m.p.loadPage(st, lastPage)
		if err != nil {
			return err
		}
		if len(lastEntries) == 0 {
			return corruptErr("map %v: empty index page %d", m.prefix, lastPage)
		}
		lastKb = lastEntries[len(lastEntries)-1]
		entries[idx] = lastKb
		err = m.repoint(st, lastKb, pos)
		if err != nil {
			return err
		}
		err = m.p.storePage(st, page, entries)
		if err != nil {
			return err
		}
		err = m.p.storePage(st, lastPage, lastEntries[:len(lastEntries)-1])
		if err != nil {
			return err
		}
	}

	err = st.Delete(rk)
	if err != nil {
		return err
	}
	return m.p.setLength(st, newLen)
}

// clear removes every record and index page, leaving the collection
// empty.
func (m kmap) clear(st store.Store) error {
	n, err := m.length(st)
	if err != nil {
		return err
	}

	pr := pageReader{p: m.p, st: st}
	for pos := uint32(0); pos < n; pos++ {
		kb, err := m.keyAt(&pr, pos)
		if err != nil {
			return err
		}
		err = st.Delete(m.recordKey(kb))
		if err != nil {
			return err
		}
	}
	for page := uint32(0); page*m.p.size < n; page++ {
		err = st.Delete(m.p.pageKey(page))
		if err != nil {
			return err
		}
	}
	return m.p.setLength(st, 0)
}

// repoint rewrites the position stored in kb's record.
func (m kmap) repoint(st store.Store, kb []byte, pos uint32) error {
	rk := m.recordKey(kb)
	raw, err := st.Get(rk)
	if err != nil {
		return err
	}
	if raw == nil {
		return corruptErr("map %v: index entry for missing record", m.prefix)
	}
	payload, _, ok := util.DecodeVarint(raw)
	if !ok {
		return corruptErr("map %v: record undecodable", m.prefix)
	}
	return st.Set(rk, append(util.EncodeVarint(nil, uint64(pos)), payload...))
}

// keyAt returns the serialized key at a position in the index pages.
func (m kmap) keyAt(pr *pageReader, pos uint32) ([]byte, error) {
	kb, err := pr.entry(pos)
	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, corruptErr("map %v: missing index entry %d", m.prefix, pos)
	}
	return kb, nil
}

// clipRange turns a page request into a position range, clipping to the
// collection length. Past the end it returns an empty range.
func (m kmap) clipRange(st store.Store, pageIdx, pageSize uint32) (uint32, uint32, error) {
	n, err := m.length(st)
	if err != nil {
		return 0, 0, err
	}
	// 64-bit so a huge pageIdx clips to empty instead of wrapping.
	start64 := uint64(pageIdx) * uint64(pageSize)
	if start64 >= uint64(n) {
		return 0, 0, nil
	}
	start := uint32(start64)
	end := start + pageSize
	if end > n || end < start {
		end = n
	}
	return start, end, nil
}

// An Entry is one key-value pair of a Keymap.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// A Keymap maps keys to values with constant-amortized insert and remove
// and iteration in insertion order until the first removal. Removal keeps
// the iteration index dense by relocating the most recently inserted key
// into the vacated position.
type Keymap[K, V any] struct {
	m   kmap
	cdc codec.Codec
}

// NewKeymap returns a map descriptor for the given namespace. The default
// page size for the iteration index is 5. With WithoutIteration the map
// keeps no index at all and Len, Iter, IterKeys, and Paging fail with
// ErrUnsupported.
func NewKeymap[K, V any](namespace []byte, opts ...Option) *Keymap[K, V] {
	o := newOptions(5, opts)
	return &Keymap[K, V]{
		m:   newKmap(namespace, o.pageSize, o.noIter),
		cdc: o.cdc,
	}
}

// AddSuffix returns a Keymap addressing an independent child namespace.
func (km *Keymap[K, V]) AddSuffix(suffix []byte) *Keymap[K, V] {
	return &Keymap[K, V]{
		m:   km.m.child(suffix),
		cdc: km.cdc,
	}
}

func (km *Keymap[K, V]) decodeKey(kb []byte) (K, error) {
	var k K
	err := km.cdc.Unmarshal(kb, &k)
	if err != nil {
		return k, decodeErr(err)
	}
	return k, nil
}

func (km *Keymap[K, V]) decodeValue(payload []byte) (V, error) {
	var v V
	err := km.cdc.Unmarshal(payload, &v)
	if err != nil {
		return v, decodeErr(err)
	}
	return v, nil
}

// Insert stores value under key. Inserting an existing key overwrites the
// value in place: length and iteration position are unchanged.
func (km *Keymap[K, V]) Insert(st store.Store, key K, value V) error {
	kb, err := km.cdc.Marshal(key)
	if err != nil {
		return err
	}
	vb, err := km.cdc.Marshal(value)
	if err != nil {
		return err
	}
	_, err = km.m.insertRaw(st, kb, vb)
	return err
}

// Get returns the value stored under key, or ok false if the key is
// absent.
func (km *Keymap[K, V]) Get(st store.Store, key K) (V, bool, error) {
	var zero V
	kb, err := km.cdc.Marshal(key)
	if err != nil {
		return zero, false, err
	}
	payload, ok, err := km.m.getRaw(st, kb)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := km.decodeValue(payload)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Contains reports whether key is present, without decoding the value.
func (km *Keymap[K, V]) Contains(st store.Store, key K) (bool, error) {
	kb, err := km.cdc.Marshal(key)
	if err != nil {
		return false, err
	}
	return km.m.contains(st, kb)
}

// Remove deletes key, failing with ErrKeyNotFound if it is absent.
func (km *Keymap[K, V]) Remove(st store.Store, key K) error {
	kb, err := km.cdc.Marshal(key)
	if err != nil {
		return err
	}
	return km.m.removeRaw(st, kb)
}

// Clear removes every entry. Unlike List.Clear this walks the index to
// delete each record, so it costs a storage operation per entry; it fails
// with ErrUnsupported when iteration is disabled.
func (km *Keymap[K, V]) Clear(st store.Store) error {
	return km.m.clear(st)
}

func (km *Keymap[K, V]) Len(st store.Store) (uint32, error) {
	return km.m.length(st)
}

func (km *Keymap[K, V]) IsEmpty(st store.Store) (bool, error) {
	n, err := km.m.length(st)
	return n == 0, err
}

// Iter returns a lazy iterator over the key-value pairs. The length is
// snapshotted at construction; call Iter again to restart.
func (km *Keymap[K, V]) Iter(st store.Store) (*KeymapIter[K, V], error) {
	n, err := km.m.length(st)
	if err != nil {
		return nil, err
	}
	return &KeymapIter[K, V]{
		km:  km,
		st:  st,
		pr:  pageReader{p: km.m.p, st: st},
		end: n,
	}, nil
}

// IterKeys is Iter over keys only; it never reads or decodes values.
func (km *Keymap[K, V]) IterKeys(st store.Store) (*KeyIter[K], error) {
	n, err := km.m.length(st)
	if err != nil {
		return nil, err
	}
	return &KeyIter[K]{
		m:         km.m,
		pr:        pageReader{p: km.m.p, st: st},
		end:       n,
		unmarshal: km.decodeKey,
	}, nil
}

// Paging returns the key-value pairs of the pageIdx-th group of pageSize
// positions. Past the end it returns an empty slice, never an error.
func (km *Keymap[K, V]) Paging(st store.Store, pageIdx, pageSize uint32) ([]Entry[K, V], error) {
	start, end, err := km.m.clipRange(st, pageIdx, pageSize)
	if err != nil || start == end {
		return nil, err
	}

	pr := pageReader{p: km.m.p, st: st}
	entries := make([]Entry[K, V], 0, end-start)
	for pos := start; pos < end; pos++ {
		kb, err := km.m.keyAt(&pr, pos)
		if err != nil {
			return nil, err
		}
		k, err := km.decodeKey(kb)
		if err != nil {
			return nil, err
		}
		payload, ok, err := km.m.getRaw(st, kb)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, corruptErr("map %v: index entry for missing record", km.m.prefix)
		}
		v, err := km.decodeValue(payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry[K, V]{Key: k, Value: v})
	}
	return entries, nil
}

// PagingKeys is Paging over keys only; it never reads or decodes values.
func (km *Keymap[K, V]) PagingKeys(st store.Store, pageIdx, pageSize uint32) ([]K, error) {
	start, end, err := km.m.clipRange(st, pageIdx, pageSize)
	if err != nil || start == end {
		return nil, err
	}

	pr := pageReader{p: km.m.p, st: st}
	keys := make([]K, 0, end-start)
	for pos := start; pos < end; pos++ {
		kb, err := km.m.keyAt(&pr, pos)
		if err != nil {
			return nil, err
		}
		k, err := km.decodeKey(kb)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

type KeymapIter[K, V any] struct {
	km  *Keymap[K, V]
	st  store.Store
	pr  pageReader
	pos uint32
	end uint32
}

// Next returns the next key-value pair, or ok false when the iterator is
// exhausted.
func (it *KeymapIter[K, V]) Next() (K, V, bool, error) {
	var zeroK K
	var zeroV V
	if it.pos >= it.end {
		return zeroK, zeroV, false, nil
	}
	kb, err := it.km.m.keyAt(&it.pr, it.pos)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	k, err := it.km.decodeKey(kb)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	payload, ok, err := it.km.m.getRaw(it.st, kb)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	if !ok {
		return zeroK, zeroV, false,
			corruptErr("map %v: index entry for missing record", it.km.m.prefix)
	}
	v, err := it.km.decodeValue(payload)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	it.pos += 1
	return k, v, true, nil
}

// A KeyIter iterates over the keys of a Keymap or Keyset without touching
// stored values.
type KeyIter[K any] struct {
	m         kmap
	pr        pageReader
	pos       uint32
	end       uint32
	unmarshal func([]byte) (K, error)
}

// Next returns the next key, or ok false when the iterator is exhausted.
func (it *KeyIter[K]) Next() (K, bool, error) {
	var zero K
	if it.pos >= it.end {
		return zero, false, nil
	}
	kb, err := it.m.keyAt(&it.pr, it.pos)
	if err != nil {
		return zero, false, err
	}
	k, err := it.unmarshal(kb)
	if err != nil {
		return zero, false, err
	}
	it.pos += 1
	return k, true, nil
}
