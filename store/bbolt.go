package store

import (
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	stowBucket = []byte{'s', 't', 'o', 'w'}
)

// A BBoltStore is a Store backed by a single bucket in a bbolt database.
type BBoltStore struct {
	db *bbolt.DB
}

func OpenBBoltStore(dataDir string) (*BBoltStore, error) {
	db, err := bbolt.Open(filepath.Join(dataDir, "stowkv.bbolt"), 0644, nil)
	if err != nil {
		return nil, err
	}
	// Dangerous, but about 100x faster.
	db.NoFreelistSync = true
	db.NoSync = true

	err = db.Update(
		func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(stowBucket)
			return err
		})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BBoltStore{
		db: db,
	}, nil
}

func (bs *BBoltStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := bs.db.View(
		func(tx *bbolt.Tx) error {
			v := tx.Bucket(stowBucket).Get(key)
			if v != nil {
				// Only valid for the duration of the transaction.
				val = append([]byte(nil), v...)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (bs *BBoltStore) Set(key, val []byte) error {
	return bs.db.Update(
		func(tx *bbolt.Tx) error {
			return tx.Bucket(stowBucket).Put(key, val)
		})
}

func (bs *BBoltStore) Delete(key []byte) error {
	return bs.db.Update(
		func(tx *bbolt.Tx) error {
			return tx.Bucket(stowBucket).Delete(key)
		})
}

func (bs *BBoltStore) Close() error {
	return bs.db.Close()
}
