package coll_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/coll"
	"github.com/stowkv/stowkv/store"
)

func collectList[T comparable](t *testing.T, it *coll.ListIter[T]) []T {
	t.Helper()

	var vs []T
	for {
		v, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next() failed with %s", err)
		}
		if !ok {
			return vs
		}
		vs = append(vs, v)
	}
}

func checkListElems(t *testing.T, st store.Store, l *coll.List[uint64], want []uint64) {
	t.Helper()

	n, err := l.Len(st)
	if err != nil {
		t.Fatalf("Len() failed with %s", err)
	}
	if n != uint32(len(want)) {
		t.Fatalf("Len() got %d want %d", n, len(want))
	}
	it, err := l.Iter(st)
	if err != nil {
		t.Fatalf("Iter() failed with %s", err)
	}
	got := collectList(t, it)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d got %d want %d", i, got[i], want[i])
		}
	}
}

func TestList(t *testing.T) {
	forEachCodec(t, func(t *testing.T, cdc codec.Codec) {
		for _, ps := range testPageSizes {
			t.Run(fmt.Sprintf("page_size=%d", ps), func(t *testing.T) {
				testList(t, cdc, ps)
			})
		}
	})
}

func testList(t *testing.T, cdc codec.Codec, ps uint32) {
	st := store.NewMemStore()
	l := coll.NewList[uint64]([]byte("list"), coll.WithCodec(cdc),
		coll.WithPageSize(ps))

	n, err := l.Len(st)
	if err != nil {
		t.Fatalf("Len() failed with %s", err)
	}
	if n != 0 {
		t.Errorf("Len() got %d want 0", n)
	}
	_, err = l.Pop(st)
	if err != coll.ErrEmpty {
		t.Errorf("Pop() got %v want %v", err, coll.ErrEmpty)
	}

	for i := uint64(0); i < 10; i++ {
		pos, err := l.Push(st, i)
		if err != nil {
			t.Fatalf("Push(%d) failed with %s", i, err)
		}
		if pos != uint32(i) {
			t.Errorf("Push(%d) got position %d want %d", i, pos, i)
		}
	}
	checkListElems(t, st, l,
		[]uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	_, ok, err := l.Get(st, 10)
	if err != nil {
		t.Fatalf("Get(10) failed with %s", err)
	}
	if ok {
		t.Error("Get(10) got ok true want false")
	}

	err = l.Set(st, 3, 333)
	if err != nil {
		t.Fatalf("Set(3) failed with %s", err)
	}
	v, ok, err := l.Get(st, 3)
	if err != nil || !ok {
		t.Fatalf("Get(3) got ok %v, error %v", ok, err)
	}
	if v != 333 {
		t.Errorf("Get(3) got %d want 333", v)
	}
	err = l.Set(st, 10, 0)
	if err != coll.ErrOutOfBounds {
		t.Errorf("Set(10) got %v want %v", err, coll.ErrOutOfBounds)
	}

	v, err = l.Pop(st)
	if err != nil {
		t.Fatalf("Pop() failed with %s", err)
	}
	if v != 9 {
		t.Errorf("Pop() got %d want 9", v)
	}

	v, err = l.Remove(st, 0)
	if err != nil {
		t.Fatalf("Remove(0) failed with %s", err)
	}
	if v != 0 {
		t.Errorf("Remove(0) got %d want 0", v)
	}
	checkListElems(t, st, l, []uint64{1, 2, 333, 4, 5, 6, 7, 8})

	v, err = l.Remove(st, 2)
	if err != nil {
		t.Fatalf("Remove(2) failed with %s", err)
	}
	if v != 333 {
		t.Errorf("Remove(2) got %d want 333", v)
	}
	checkListElems(t, st, l, []uint64{1, 2, 4, 5, 6, 7, 8})

	_, err = l.Remove(st, 7)
	if err != coll.ErrOutOfBounds {
		t.Errorf("Remove(7) got %v want %v", err, coll.ErrOutOfBounds)
	}

	err = l.Clear(st)
	if err != nil {
		t.Fatalf("Clear() failed with %s", err)
	}
	checkListElems(t, st, l, nil)
	pos, err := l.Push(st, 100)
	if err != nil {
		t.Fatalf("Push(100) failed with %s", err)
	}
	if pos != 0 {
		t.Errorf("Push(100) got position %d want 0", pos)
	}
}

func TestListPaging(t *testing.T) {
	st := store.NewMemStore()
	l := coll.NewList[uint64]([]byte("list"), coll.WithPageSize(3))

	for i := uint64(0); i < 7; i++ {
		_, err := l.Push(st, i)
		if err != nil {
			t.Fatalf("Push(%d) failed with %s", i, err)
		}
	}

	cases := []struct {
		pageIdx  uint32
		pageSize uint32
		want     []uint64
	}{
		{pageIdx: 0, pageSize: 3, want: []uint64{0, 1, 2}},
		{pageIdx: 1, pageSize: 3, want: []uint64{3, 4, 5}},
		{pageIdx: 2, pageSize: 3, want: []uint64{6}},
		{pageIdx: 3, pageSize: 3, want: nil},
		{pageIdx: 0, pageSize: 10, want: []uint64{0, 1, 2, 3, 4, 5, 6}},
		{pageIdx: 100, pageSize: 10, want: nil},
		// pageIdx * pageSize overflows uint32; still clips to empty.
		{pageIdx: math.MaxUint32, pageSize: 3, want: nil},
		{pageIdx: 2, pageSize: math.MaxUint32, want: nil},
		{pageIdx: 0, pageSize: math.MaxUint32,
			want: []uint64{0, 1, 2, 3, 4, 5, 6}},
	}
	for _, c := range cases {
		got, err := l.Paging(st, c.pageIdx, c.pageSize)
		if err != nil {
			t.Fatalf("Paging(%d, %d) failed with %s", c.pageIdx, c.pageSize, err)
		}
		if len(got) != len(c.want) {
			t.Errorf("Paging(%d, %d) got %d elements want %d",
				c.pageIdx, c.pageSize, len(got), len(c.want))
			continue
		}
		for i := range c.want {
			if got[i] != c.want[i] {
				t.Errorf("Paging(%d, %d) element %d got %d want %d",
					c.pageIdx, c.pageSize, i, got[i], c.want[i])
			}
		}
	}
}

// An empty string must survive the store like any other element.
func TestListEmptyElement(t *testing.T) {
	forEachCodec(t, func(t *testing.T, cdc codec.Codec) {
		st := store.NewMemStore()
		l := coll.NewList[string]([]byte("list"), coll.WithCodec(cdc))

		_, err := l.Push(st, "")
		if err != nil {
			t.Fatalf("Push of empty string failed with %s", err)
		}
		v, ok, err := l.Get(st, 0)
		if err != nil || !ok {
			t.Fatalf("Get(0) got ok %v, error %v", ok, err)
		}
		if v != "" {
			t.Errorf("Get(0) got %q want %q", v, "")
		}
		v, err = l.Pop(st)
		if err != nil {
			t.Fatalf("Pop() failed with %s", err)
		}
		if v != "" {
			t.Errorf("Pop() got %q want %q", v, "")
		}
	})
}

func TestListSuffix(t *testing.T) {
	st := store.NewMemStore()
	l := coll.NewList[uint64]([]byte("list"))

	// Distinct suffix chains must address distinct namespaces even when
	// their concatenations coincide.
	l1 := l.AddSuffix([]byte("ab")).AddSuffix([]byte("c"))
	l2 := l.AddSuffix([]byte("a")).AddSuffix([]byte("bc"))

	_, err := l1.Push(st, 1)
	if err != nil {
		t.Fatalf("Push(1) failed with %s", err)
	}
	checkListElems(t, st, l2, nil)
	checkListElems(t, st, l1, []uint64{1})
	checkListElems(t, st, l, nil)
}
