package store

import (
	"os"

	"github.com/dgraph-io/badger"
	log "github.com/sirupsen/logrus"
)

// A BadgerStore is a Store backed by a badger database.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(dataDir string, logger *log.Logger) (*BadgerStore, error) {
	os.MkdirAll(dataDir, 0755)

	opts := badger.DefaultOptions(dataDir)
	opts = opts.WithBypassLockGuard(true)
	opts = opts.WithLogger(logger)
	opts = opts.WithSyncWrites(false)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db: db,
	}, nil
}

func (bs *BadgerStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := bs.db.View(
		func(tx *badger.Txn) error {
			item, err := tx.Get(key)
			if err == badger.ErrKeyNotFound {
				return nil
			} else if err != nil {
				return err
			}
			val, err = item.ValueCopy(nil)
			return err
		})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (bs *BadgerStore) Set(key, val []byte) error {
	return bs.db.Update(
		func(tx *badger.Txn) error {
			return tx.Set(key, val)
		})
}

func (bs *BadgerStore) Delete(key []byte) error {
	return bs.db.Update(
		func(tx *badger.Txn) error {
			err := tx.Delete(key)
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		})
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}
