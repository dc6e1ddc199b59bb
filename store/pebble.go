package store

import (
	"os"

	"github.com/cockroachdb/pebble"
	log "github.com/sirupsen/logrus"
)

// A PebbleStore is a Store backed by a pebble database.
type PebbleStore struct {
	db *pebble.DB
}

func OpenPebbleStore(dataDir string, logger *log.Logger) (*PebbleStore, error) {
	os.MkdirAll(dataDir, 0755)

	db, err := pebble.Open(dataDir, &pebble.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{
		db: db,
	}, nil
}

func (ps *PebbleStore) Get(key []byte) ([]byte, error) {
	val, closer, err := ps.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	val = append([]byte(nil), val...)
	closer.Close()
	return val, nil
}

func (ps *PebbleStore) Set(key, val []byte) error {
	return ps.db.Set(key, val, pebble.NoSync)
}

func (ps *PebbleStore) Delete(key []byte) error {
	return ps.db.Delete(key, pebble.NoSync)
}

func (ps *PebbleStore) Close() error {
	return ps.db.Close()
}
