package util_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stowkv/stowkv/util"
)

func TestUint32(t *testing.T) {
	cases := []uint32{0, 1, 255, 256, 1<<16 - 1, 1 << 16, math.MaxUint32}
	for _, u := range cases {
		buf := util.EncodeUint32(nil, u)
		if len(buf) != 4 {
			t.Errorf("EncodeUint32(%d): len(buf) got %d want 4", u, len(buf))
		}
		v, ok := util.DecodeUint32(buf)
		if !ok || v != u {
			t.Errorf("DecodeUint32(EncodeUint32(%d)) got %d %v", u, v, ok)
		}
	}

	if _, ok := util.DecodeUint32([]byte{1, 2, 3}); ok {
		t.Error("DecodeUint32 of short buffer did not fail")
	}
}

func TestUint64(t *testing.T) {
	cases := []uint64{0, 1, math.MaxUint32, math.MaxUint32 + 1, math.MaxUint64}
	for _, u := range cases {
		v, ok := util.DecodeUint64(util.EncodeUint64(nil, u))
		if !ok || v != u {
			t.Errorf("DecodeUint64(EncodeUint64(%d)) got %d %v", u, v, ok)
		}
	}
}

func TestVarint(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 300, 1 << 14, 1<<14 - 1, 1 << 32,
		math.MaxUint64 - 1, math.MaxUint64}
	for _, u := range cases {
		buf := util.EncodeVarint(nil, u)
		rest, v, ok := util.DecodeVarint(buf)
		if !ok || v != u {
			t.Errorf("DecodeVarint(EncodeVarint(%d)) got %d %v", u, v, ok)
		}
		if len(rest) != 0 {
			t.Errorf("DecodeVarint(EncodeVarint(%d)): %d bytes left over", u, len(rest))
		}
	}

	if _, _, ok := util.DecodeVarint([]byte{0x80}); ok {
		t.Error("DecodeVarint of truncated buffer did not fail")
	}
	if _, _, ok := util.DecodeVarint(nil); ok {
		t.Error("DecodeVarint of empty buffer did not fail")
	}
}

func TestZigzag64(t *testing.T) {
	cases := []int64{0, 1, -1, 63, -64, 1234, -4321, math.MaxInt64, math.MinInt64}
	for _, n := range cases {
		_, v, ok := util.DecodeZigzag64(util.EncodeZigzag64(nil, n))
		if !ok || v != n {
			t.Errorf("DecodeZigzag64(EncodeZigzag64(%d)) got %d %v", n, v, ok)
		}
	}
}

func TestBytesSlice(t *testing.T) {
	cases := [][][]byte{
		{},
		{[]byte("abc")},
		{[]byte("abc"), []byte(""), []byte("defg")},
		{[]byte{0}, []byte{0, 1, 2}, bytes.Repeat([]byte{0xFF}, 300)},
	}
	for _, bss := range cases {
		got, ok := util.DecodeBytesSlice(util.EncodeBytesSlice(nil, bss))
		if !ok {
			t.Errorf("DecodeBytesSlice failed for %d elements", len(bss))
			continue
		}
		if len(got) != len(bss) {
			t.Errorf("DecodeBytesSlice: len got %d want %d", len(got), len(bss))
			continue
		}
		for idx := range bss {
			if !bytes.Equal(got[idx], bss[idx]) {
				t.Errorf("DecodeBytesSlice: element %d got %v want %v", idx, got[idx], bss[idx])
			}
		}
	}

	if _, ok := util.DecodeBytesSlice([]byte{2, 1, 'a'}); ok {
		t.Error("DecodeBytesSlice of truncated buffer did not fail")
	}
	if _, ok := util.DecodeBytesSlice([]byte{1, 1, 'a', 'b'}); ok {
		t.Error("DecodeBytesSlice with trailing bytes did not fail")
	}
}
