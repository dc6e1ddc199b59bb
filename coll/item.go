package coll

import (
	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/store"
)

// An Item is a single value stored under a fixed key.
type Item[T any] struct {
	key []byte
	cdc codec.Codec
}

func NewItem[T any](key []byte, opts ...Option) *Item[T] {
	o := newOptions(1, opts)
	return &Item[T]{
		key: key,
		cdc: o.cdc,
	}
}

// AddSuffix returns an Item addressing an independent child namespace.
func (it *Item[T]) AddSuffix(suffix []byte) *Item[T] {
	return &Item[T]{
		key: childNamespace(it.key, suffix),
		cdc: it.cdc,
	}
}

func (it *Item[T]) Save(st store.Store, v T) error {
	data, err := it.cdc.Marshal(v)
	if err != nil {
		return err
	}
	return st.Set(it.key, data)
}

// Load returns the stored value, failing with ErrKeyNotFound if nothing
// has been saved.
func (it *Item[T]) Load(st store.Store) (T, error) {
	var v T
	data, err := st.Get(it.key)
	if err != nil {
		return v, err
	}
	if data == nil {
		return v, ErrKeyNotFound
	}
	err = it.cdc.Unmarshal(data, &v)
	if err != nil {
		return v, decodeErr(err)
	}
	return v, nil
}

// MayLoad is Load for values that may legitimately be absent.
func (it *Item[T]) MayLoad(st store.Store) (T, bool, error) {
	var v T
	data, err := st.Get(it.key)
	if err != nil || data == nil {
		return v, false, err
	}
	err = it.cdc.Unmarshal(data, &v)
	if err != nil {
		return v, false, decodeErr(err)
	}
	return v, true, nil
}

func (it *Item[T]) Remove(st store.Store) error {
	return st.Delete(it.key)
}

// IsEmpty reports whether nothing is saved, without decoding the value.
func (it *Item[T]) IsEmpty(st store.Store) (bool, error) {
	data, err := st.Get(it.key)
	if err != nil {
		return false, err
	}
	return data == nil, nil
}

// Update loads the value, applies fn, and saves the result, returning it.
// The value must already exist.
func (it *Item[T]) Update(st store.Store, fn func(T) (T, error)) (T, error) {
	v, err := it.Load(st)
	if err != nil {
		return v, err
	}
	v, err = fn(v)
	if err != nil {
		return v, err
	}
	return v, it.Save(st, v)
}
