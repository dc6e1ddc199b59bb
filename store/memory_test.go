package store_test

import (
	"testing"

	"github.com/stowkv/stowkv/store"
	"github.com/stowkv/stowkv/store/test"
)

func TestMemStore(t *testing.T) {
	st := store.NewMemStore()
	test.RunStoreTest(t, st)
}

func TestMemStoreLen(t *testing.T) {
	st := store.NewMemStore()
	if st.Len() != 0 {
		t.Errorf("Len() got %d want 0", st.Len())
	}
	st.Set([]byte("a"), []byte("1"))
	st.Set([]byte("b"), []byte("2"))
	st.Set([]byte("a"), []byte("3"))
	if st.Len() != 2 {
		t.Errorf("Len() got %d want 2", st.Len())
	}
	st.Delete([]byte("a"))
	if st.Len() != 1 {
		t.Errorf("Len() got %d want 1", st.Len())
	}
}
