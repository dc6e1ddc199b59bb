package store

import (
	"bytes"

	"github.com/google/btree"
)

type memItem struct {
	key []byte
	val []byte
}

// A MemStore is an in-memory Store backed by a btree. It is the store used
// by most of the tests and by contract-style callers that buffer writes
// themselves.
type MemStore struct {
	tree *btree.BTreeG[memItem]
}

func NewMemStore() *MemStore {
	return &MemStore{
		tree: btree.NewG(16,
			func(a, b memItem) bool {
				return bytes.Compare(a.key, b.key) < 0
			}),
	}
}

func (ms *MemStore) Get(key []byte) ([]byte, error) {
	item, ok := ms.tree.Get(memItem{key: key})
	if !ok {
		return nil, nil
	}
	return item.val, nil
}

func (ms *MemStore) Set(key, val []byte) error {
	ms.tree.ReplaceOrInsert(memItem{
		key: append([]byte(nil), key...),
		val: append([]byte(nil), val...),
	})
	return nil
}

func (ms *MemStore) Delete(key []byte) error {
	ms.tree.Delete(memItem{key: key})
	return nil
}

// Len returns the number of keys currently stored.
func (ms *MemStore) Len() int {
	return ms.tree.Len()
}
