package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stowkv/stowkv/store"
	"github.com/stowkv/stowkv/store/test"
	"github.com/stowkv/stowkv/testutil"
)

func TestBadgerStore(t *testing.T) {
	err := testutil.CleanDir("testdata", []string{".gitignore"})
	if err != nil {
		t.Fatal(err)
	}

	st, err := store.OpenBadgerStore(filepath.Join("testdata", "badger"),
		testutil.SetupLogger("badger_test.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	test.RunStoreTest(t, st)
}
