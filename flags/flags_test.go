package flags_test

import (
	"testing"

	"github.com/stowkv/stowkv/flags"
)

func TestFlags(t *testing.T) {
	flgs := flags.Default()
	if !flgs.GetFlag(flags.BinaryCodec) {
		t.Error("GetFlag(BinaryCodec) got false want true")
	}
	if !flgs.GetFlag(flags.MapIteration) {
		t.Error("GetFlag(MapIteration) got false want true")
	}

	f, ok := flags.LookupFlag("Binary_Codec")
	if !ok {
		t.Fatal("LookupFlag(Binary_Codec) got ok false want true")
	}
	if f != flags.BinaryCodec {
		t.Errorf("LookupFlag(Binary_Codec) got %v want %v", f, flags.BinaryCodec)
	}
	_, ok = flags.LookupFlag("no_such_flag")
	if ok {
		t.Error("LookupFlag(no_such_flag) got ok true want false")
	}

	cnt := 0
	flags.ListFlags(
		func(nam string, f flags.Flag) {
			cnt += 1
		})
	if cnt != 2 {
		t.Errorf("ListFlags() visited %d flags want 2", cnt)
	}
}
