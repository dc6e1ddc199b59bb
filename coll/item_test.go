package coll_test

import (
	"strings"
	"testing"

	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/coll"
	"github.com/stowkv/stowkv/store"
)

func TestItem(t *testing.T) {
	forEachCodec(t, func(t *testing.T, cdc codec.Codec) {
		st := store.NewMemStore()
		it := coll.NewItem[string]([]byte("item"), coll.WithCodec(cdc))

		empty, err := it.IsEmpty(st)
		if err != nil {
			t.Fatalf("IsEmpty() failed with %s", err)
		}
		if !empty {
			t.Error("IsEmpty() got false want true")
		}
		_, err = it.Load(st)
		if err != coll.ErrKeyNotFound {
			t.Errorf("Load() got %v want %v", err, coll.ErrKeyNotFound)
		}
		_, ok, err := it.MayLoad(st)
		if err != nil {
			t.Fatalf("MayLoad() failed with %s", err)
		}
		if ok {
			t.Error("MayLoad() got ok true want false")
		}

		err = it.Save(st, "hello")
		if err != nil {
			t.Fatalf("Save() failed with %s", err)
		}
		s, err := it.Load(st)
		if err != nil {
			t.Fatalf("Load() failed with %s", err)
		}
		if s != "hello" {
			t.Errorf("Load() got %q want %q", s, "hello")
		}
		empty, err = it.IsEmpty(st)
		if err != nil {
			t.Fatalf("IsEmpty() failed with %s", err)
		}
		if empty {
			t.Error("IsEmpty() got true want false")
		}

		s, err = it.Update(st,
			func(s string) (string, error) {
				return strings.ToUpper(s), nil
			})
		if err != nil {
			t.Fatalf("Update() failed with %s", err)
		}
		if s != "HELLO" {
			t.Errorf("Update() got %q want %q", s, "HELLO")
		}
		s, err = it.Load(st)
		if err != nil {
			t.Fatalf("Load() failed with %s", err)
		}
		if s != "HELLO" {
			t.Errorf("Load() got %q want %q", s, "HELLO")
		}

		child := it.AddSuffix([]byte("sub"))
		empty, err = child.IsEmpty(st)
		if err != nil {
			t.Fatalf("IsEmpty() failed with %s", err)
		}
		if !empty {
			t.Error("child IsEmpty() got false want true")
		}
		err = child.Save(st, "other")
		if err != nil {
			t.Fatalf("Save() failed with %s", err)
		}
		s, err = it.Load(st)
		if err != nil {
			t.Fatalf("Load() failed with %s", err)
		}
		if s != "HELLO" {
			t.Errorf("Load() after child save got %q want %q", s, "HELLO")
		}

		err = it.Remove(st)
		if err != nil {
			t.Fatalf("Remove() failed with %s", err)
		}
		_, err = it.Load(st)
		if err != coll.ErrKeyNotFound {
			t.Errorf("Load() got %v want %v", err, coll.ErrKeyNotFound)
		}
		s, err = child.Load(st)
		if err != nil {
			t.Fatalf("Load() failed with %s", err)
		}
		if s != "other" {
			t.Errorf("child Load() got %q want %q", s, "other")
		}
	})
}
