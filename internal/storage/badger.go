// internal/storage/badger.go
package storage

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by an embedded Badger database.
type Badger struct {
	db *badger.DB
}

// OpenBadger creates or opens a Badger-backed store at the given directory.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Get returns the value for key, or ErrNotFound.
func (b *Badger) Get(key string) (string, error) {
	var value string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key.
func (b *Badger) Set(key, value string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Remove deletes key.
func (b *Badger) Remove(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
