package coll

import (
	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/store"
)

// presentVal marks membership in a Keyset without iteration, where there
// is no position to store and empty values are not allowed.
var presentVal = []byte{1}

// A Keyset is a set of keys with the same index mechanics as a Keymap but
// no stored values.
type Keyset[K any] struct {
	m   kmap
	cdc codec.Codec
}

// NewKeyset returns a set descriptor for the given namespace. The default
// page size for the iteration index is 5. With WithoutIteration the set
// keeps no index and Len, Iter, and Paging fail with ErrUnsupported.
func NewKeyset[K any](namespace []byte, opts ...Option) *Keyset[K] {
	o := newOptions(5, opts)
	return &Keyset[K]{
		m:   newKmap(namespace, o.pageSize, o.noIter),
		cdc: o.cdc,
	}
}

// AddSuffix returns a Keyset addressing an independent child namespace.
func (ks *Keyset[K]) AddSuffix(suffix []byte) *Keyset[K] {
	return &Keyset[K]{
		m:   ks.m.child(suffix),
		cdc: ks.cdc,
	}
}

func (ks *Keyset[K]) decodeKey(kb []byte) (K, error) {
	var k K
	err := ks.cdc.Unmarshal(kb, &k)
	if err != nil {
		return k, decodeErr(err)
	}
	return k, nil
}

// Insert adds key and reports whether it was newly added. Without
// iteration the membership record is written unconditionally and Insert
// always reports false.
func (ks *Keyset[K]) Insert(st store.Store, key K) (bool, error) {
	kb, err := ks.cdc.Marshal(key)
	if err != nil {
		return false, err
	}
	if ks.m.noIter {
		return ks.m.insertRaw(st, kb, presentVal)
	}
	return ks.m.insertRaw(st, kb, nil)
}

// Contains reports whether key is a member.
func (ks *Keyset[K]) Contains(st store.Store, key K) (bool, error) {
	kb, err := ks.cdc.Marshal(key)
	if err != nil {
		return false, err
	}
	return ks.m.contains(st, kb)
}

// Remove deletes key, failing with ErrKeyNotFound if it is not a member.
func (ks *Keyset[K]) Remove(st store.Store, key K) error {
	kb, err := ks.cdc.Marshal(key)
	if err != nil {
		return err
	}
	return ks.m.removeRaw(st, kb)
}

// Clear removes every member, one storage delete per member plus the
// index pages; it fails with ErrUnsupported when iteration is disabled.
func (ks *Keyset[K]) Clear(st store.Store) error {
	return ks.m.clear(st)
}

func (ks *Keyset[K]) Len(st store.Store) (uint32, error) {
	return ks.m.length(st)
}

func (ks *Keyset[K]) IsEmpty(st store.Store) (bool, error) {
	n, err := ks.m.length(st)
	return n == 0, err
}

// Iter returns a lazy iterator over the members. The length is
// snapshotted at construction; call Iter again to restart.
func (ks *Keyset[K]) Iter(st store.Store) (*KeyIter[K], error) {
	n, err := ks.m.length(st)
	if err != nil {
		return nil, err
	}
	return &KeyIter[K]{
		m:         ks.m,
		pr:        pageReader{p: ks.m.p, st: st},
		end:       n,
		unmarshal: ks.decodeKey,
	}, nil
}

// Paging returns the members of the pageIdx-th group of pageSize
// positions. Past the end it returns an empty slice, never an error.
func (ks *Keyset[K]) Paging(st store.Store, pageIdx, pageSize uint32) ([]K, error) {
	start, end, err := ks.m.clipRange(st, pageIdx, pageSize)
	if err != nil || start == end {
		return nil, err
	}

	pr := pageReader{p: ks.m.p, st: st}
	keys := make([]K, 0, end-start)
	for pos := start; pos < end; pos++ {
		kb, err := ks.m.keyAt(&pr, pos)
		if err != nil {
			return nil, err
		}
		k, err := ks.decodeKey(kb)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
