package codec_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/util"
)

func roundTrip[T comparable](t *testing.T, cdc codec.Codec, v T) {
	t.Helper()

	data, err := cdc.Marshal(v)
	if err != nil {
		t.Errorf("Marshal(%v) failed with %s", v, err)
		return
	}
	var got T
	err = cdc.Unmarshal(data, &got)
	if err != nil {
		t.Errorf("Unmarshal(Marshal(%v)) failed with %s", v, err)
		return
	}
	if got != v {
		t.Errorf("Unmarshal(Marshal(%v)) got %v", v, got)
	}
}

func testCodec(t *testing.T, cdc codec.Codec) {
	t.Helper()

	roundTrip(t, cdc, true)
	roundTrip(t, cdc, false)
	roundTrip(t, cdc, int8(-12))
	roundTrip(t, cdc, uint8(250))
	roundTrip(t, cdc, int16(-1234))
	roundTrip(t, cdc, uint16(43210))
	roundTrip(t, cdc, int32(-123456))
	roundTrip(t, cdc, uint32(math.MaxUint32))
	roundTrip(t, cdc, int64(math.MinInt64))
	roundTrip(t, cdc, uint64(math.MaxUint64))
	roundTrip(t, cdc, -42)
	roundTrip(t, cdc, uint(42))
	roundTrip(t, cdc, float32(1.5))
	roundTrip(t, cdc, 12345.6789)
	roundTrip(t, cdc, "")
	roundTrip(t, cdc, "hello, world")
}

func TestBinary(t *testing.T) {
	testCodec(t, codec.Binary{})
}

func TestJSON(t *testing.T) {
	testCodec(t, codec.JSON{})

	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	roundTrip(t, codec.JSON{}, point{X: 1, Y: -2})
}

func TestBinaryBytes(t *testing.T) {
	cdc := codec.Binary{}
	for _, in := range [][]byte{{0, 1, 2, 0xFF}, {}} {
		data, err := cdc.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal(%v) failed with %s", in, err)
		}
		if len(data) == 0 {
			t.Fatalf("Marshal(%v) got zero bytes", in)
		}
		var got []byte
		err = cdc.Unmarshal(data, &got)
		if err != nil {
			t.Fatalf("Unmarshal failed with %s", err)
		}
		if !bytes.Equal(got, in) {
			t.Errorf("Unmarshal(Marshal(%v)) got %v", in, got)
		}
	}
}

// An empty encoding would be indistinguishable from absence once stored.
func TestBinaryNeverEmpty(t *testing.T) {
	cdc := codec.Binary{}
	for _, v := range []any{"", []byte{}, []byte(nil), 0, uint(0)} {
		data, err := cdc.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%#v) failed with %s", v, err)
		}
		if len(data) == 0 {
			t.Errorf("Marshal(%#v) got zero bytes", v)
		}
	}

	if _, err := cdc.Marshal(emptyMarshaler{}); err == nil {
		t.Error("Marshal of zero-byte BinaryMarshaler did not fail")
	}
}

type emptyMarshaler struct{}

func (emptyMarshaler) MarshalBinary() ([]byte, error) {
	return nil, nil
}

func TestBinaryLayout(t *testing.T) {
	cdc := codec.Binary{}

	data, err := cdc.Marshal(uint32(0x01020304))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3, 4}) {
		t.Errorf("Marshal(uint32): got %v", data)
	}

	data, err = cdc.Marshal("abc")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{3, 'a', 'b', 'c'}) {
		t.Errorf("Marshal(string): got %v", data)
	}

	data, err = cdc.Marshal(uint64(7))
	if err != nil {
		t.Fatal(err)
	}
	want := util.EncodeUint64(nil, 7)
	if !bytes.Equal(data, want) {
		t.Errorf("Marshal(uint64): got %v want %v", data, want)
	}

	data, err = cdc.Marshal(-3)
	if err != nil {
		t.Fatal(err)
	}
	want = util.EncodeZigzag64(nil, -3)
	if !bytes.Equal(data, want) {
		t.Errorf("Marshal(int): got %v want %v", data, want)
	}
	data, err = cdc.Marshal(uint(300))
	if err != nil {
		t.Fatal(err)
	}
	want = util.EncodeVarint(nil, 300)
	if !bytes.Equal(data, want) {
		t.Errorf("Marshal(uint): got %v want %v", data, want)
	}
}

func TestBinaryErrors(t *testing.T) {
	cdc := codec.Binary{}

	type unsupported struct{ X int }
	if _, err := cdc.Marshal(unsupported{1}); err == nil {
		t.Error("Marshal of unsupported type did not fail")
	}

	var u unsupported
	if err := cdc.Unmarshal([]byte{1}, &u); err == nil {
		t.Error("Unmarshal into unsupported type did not fail")
	}

	var n uint32
	if err := cdc.Unmarshal([]byte{1, 2}, &n); err == nil {
		t.Error("Unmarshal of short buffer did not fail")
	}
	if err := cdc.Unmarshal([]byte{1, 2, 3, 4, 5}, &n); err == nil {
		t.Error("Unmarshal of long buffer did not fail")
	}

	var s string
	if err := cdc.Unmarshal([]byte{5, 'a'}, &s); err == nil {
		t.Error("Unmarshal of truncated string did not fail")
	}
	if err := cdc.Unmarshal([]byte{1, 'a', 'b'}, &s); err == nil {
		t.Error("Unmarshal of overlong string did not fail")
	}
}
