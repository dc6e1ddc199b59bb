package test

import (
	"bytes"
	"testing"

	"github.com/stowkv/stowkv/store"
)

const (
	cmdGet = iota
	cmdGetMissing
	cmdSet
	cmdDelete
)

type storeCmd struct {
	cmd int
	key string
	val string
}

var (
	storeTests = [][]storeCmd{
		{
			{cmd: cmdGetMissing, key: "a"},
			{cmd: cmdSet, key: "a", val: "1"},
			{cmd: cmdGet, key: "a", val: "1"},
			{cmd: cmdSet, key: "a", val: "2"},
			{cmd: cmdGet, key: "a", val: "2"},
			{cmd: cmdDelete, key: "a"},
			{cmd: cmdGetMissing, key: "a"},
		},
		{
			{cmd: cmdSet, key: "ab", val: "ab-val"},
			{cmd: cmdSet, key: "abc", val: "abc-val"},
			{cmd: cmdSet, key: "b", val: "b-val"},
			{cmd: cmdGet, key: "ab", val: "ab-val"},
			{cmd: cmdGet, key: "abc", val: "abc-val"},
			{cmd: cmdGet, key: "b", val: "b-val"},
			{cmd: cmdDelete, key: "ab"},
			{cmd: cmdGetMissing, key: "ab"},
			{cmd: cmdGet, key: "abc", val: "abc-val"},
		},
		{
			// Deleting a missing key must not fail.
			{cmd: cmdDelete, key: "never-set"},
			{cmd: cmdGetMissing, key: "never-set"},
		},
		{
			// Keys containing zero bytes and high bytes.
			{cmd: cmdSet, key: "k\x00\x01", val: "zero"},
			{cmd: cmdSet, key: "k\xFF", val: "high"},
			{cmd: cmdGet, key: "k\x00\x01", val: "zero"},
			{cmd: cmdGet, key: "k\xFF", val: "high"},
		},
	}
)

// RunStoreTest checks the Store contract: set then get returns the value
// most recently set, get of a missing or deleted key returns nil, and
// deletes of missing keys succeed.
func RunStoreTest(t *testing.T, st store.Store) {
	t.Helper()

	for _, cmds := range storeTests {
		for _, cmd := range cmds {
			runCmd(t, st, cmd)
		}
	}

	runBigValues(t, st)
}

func runCmd(t *testing.T, st store.Store, cmd storeCmd) {
	t.Helper()

	switch cmd.cmd {
	case cmdGet:
		val, err := st.Get([]byte(cmd.key))
		if err != nil {
			t.Errorf("Get(%q) failed with %s", cmd.key, err)
		} else if !bytes.Equal(val, []byte(cmd.val)) {
			t.Errorf("Get(%q) got %q want %q", cmd.key, val, cmd.val)
		}
	case cmdGetMissing:
		val, err := st.Get([]byte(cmd.key))
		if err != nil {
			t.Errorf("Get(%q) failed with %s", cmd.key, err)
		} else if val != nil {
			t.Errorf("Get(%q) got %q want nil", cmd.key, val)
		}
	case cmdSet:
		err := st.Set([]byte(cmd.key), []byte(cmd.val))
		if err != nil {
			t.Errorf("Set(%q, %q) failed with %s", cmd.key, cmd.val, err)
		}
	case cmdDelete:
		err := st.Delete([]byte(cmd.key))
		if err != nil {
			t.Errorf("Delete(%q) failed with %s", cmd.key, err)
		}
	}
}

func runBigValues(t *testing.T, st store.Store) {
	t.Helper()

	val := bytes.Repeat([]byte{0xA5}, 64*1024)
	err := st.Set([]byte("big"), val)
	if err != nil {
		t.Fatalf("Set(big) failed with %s", err)
	}
	got, err := st.Get([]byte("big"))
	if err != nil {
		t.Fatalf("Get(big) failed with %s", err)
	}
	if !bytes.Equal(got, val) {
		t.Errorf("Get(big): got %d bytes want %d", len(got), len(val))
	}
}
