// Package bolt persists storefront client state in a local bbolt file.
package bolt

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("storefront")

// Store is a string key/value store in a single bucket.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}
	return &Store{db: db}, nil
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.Wrapf(err, "get %q", key)
	}
	return value, found, nil
}

// Set replaces the value under key.
func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), []byte(value))
	})
	return errors.Wrapf(err, "set %q", key)
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
