package coll

import (
	"github.com/stowkv/stowkv/store"
	"github.com/stowkv/stowkv/util"
)

var (
	lenKey     = []byte("len")
	offKey     = []byte("off")
	mapLenKey  = []byte("length")
	indexesKey = []byte("indexes")
)

func readU32(st store.Store, key []byte) (uint32, bool, error) {
	val, err := st.Get(key)
	if err != nil {
		return 0, false, err
	}
	if val == nil {
		return 0, false, nil
	}
	u, ok := util.DecodeUint32(val)
	if !ok || len(val) != 4 {
		return 0, false, corruptErr("counter %v: %d bytes", key, len(val))
	}
	return u, true, nil
}

func writeU32(st store.Store, key []byte, u uint32) error {
	return st.Set(key, util.EncodeUint32(nil, u))
}

// pages is the paged index shared by lists, deques, and iterable maps: a
// length counter under a reserved key plus groups of size consecutive
// position entries serialized together under one key each. With size 1 an
// entry is stored raw under its own key, with no framing overhead.
type pages struct {
	prefix  []byte
	sub     []byte // extra key component separating pages from records
	counter []byte
	size    uint32
}

func newPages(prefix, sub, counter []byte, size uint32) pages {
	return pages{
		prefix:  prefix,
		sub:     sub,
		counter: counter,
		size:    size,
	}
}

func (p pages) counterKey() []byte {
	key := make([]byte, 0, len(p.prefix)+len(p.counter))
	return append(append(key, p.prefix...), p.counter...)
}

func (p pages) pageKey(page uint32) []byte {
	key := make([]byte, 0, len(p.prefix)+len(p.sub)+4)
	key = append(append(key, p.prefix...), p.sub...)
	return util.EncodeUint32(key, page)
}

func (p pages) length(st store.Store) (uint32, error) {
	u, _, err := readU32(st, p.counterKey())
	return u, err
}

func (p pages) setLength(st store.Store, n uint32) error {
	return writeU32(st, p.counterKey(), n)
}

// loadPage returns the entries of a page; a missing page is empty. With
// size 1 the page number is the position.
func (p pages) loadPage(st store.Store, page uint32) ([][]byte, error) {
	val, err := st.Get(p.pageKey(page))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	if p.size == 1 {
		return [][]byte{val}, nil
	}
	entries, ok := util.DecodeBytesSlice(val)
	if !ok {
		return nil, corruptErr("page %d of %v undecodable", page, p.prefix)
	}
	return entries, nil
}

// storePage writes the entries of a page; an empty page is deleted.
func (p pages) storePage(st store.Store, page uint32, entries [][]byte) error {
	if len(entries) == 0 {
		return st.Delete(p.pageKey(page))
	}
	if p.size == 1 {
		return st.Set(p.pageKey(page), entries[0])
	}
	return st.Set(p.pageKey(page), util.EncodeBytesSlice(nil, entries))
}

// getEntry returns the raw entry at pos, or nil if it has never been
// written. Callers bound pos by the length counter first.
func (p pages) getEntry(st store.Store, pos uint32) ([]byte, error) {
	if p.size == 1 {
		return st.Get(p.pageKey(pos))
	}
	entries, err := p.loadPage(st, pos/p.size)
	if err != nil {
		return nil, err
	}
	idx := pos % p.size
	if uint32(len(entries)) <= idx {
		return nil, nil
	}
	return entries[idx], nil
}

// setEntry writes the raw entry at pos, reading and rewriting only the
// page containing it.
func (p pages) setEntry(st store.Store, pos uint32, raw []byte) error {
	if p.size == 1 {
		return st.Set(p.pageKey(pos), raw)
	}

	page := pos / p.size
	entries, err := p.loadPage(st, page)
	if err != nil {
		return err
	}
	idx := pos % p.size
	// A deque growing at the front fills its boundary page from the high
	// index downward, so pad any gap with empty entries.
	for uint32(len(entries)) < idx {
		entries = append(entries, nil)
	}
	if uint32(len(entries)) == idx {
		entries = append(entries, raw)
	} else {
		entries[idx] = raw
	}
	return p.storePage(st, page, entries)
}

// pageReader reads consecutive entries, caching the most recently loaded
// page so sequential access costs one storage read per page.
type pageReader struct {
	p       pages
	st      store.Store
	pageNum uint32
	entries [][]byte
	cached  bool
}

func (pr *pageReader) entry(pos uint32) ([]byte, error) {
	if pr.p.size == 1 {
		return pr.p.getEntry(pr.st, pos)
	}

	page := pos / pr.p.size
	if !pr.cached || page != pr.pageNum {
		entries, err := pr.p.loadPage(pr.st, page)
		if err != nil {
			return nil, err
		}
		pr.pageNum = page
		pr.entries = entries
		pr.cached = true
	}
	idx := pos % pr.p.size
	if uint32(len(pr.entries)) <= idx {
		return nil, nil
	}
	return pr.entries[idx], nil
}
