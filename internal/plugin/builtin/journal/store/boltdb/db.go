package boltdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

// schemaVersion is stamped into the meta bucket of every journal file.
const schemaVersion = "1"

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")

	keySchema = []byte("schema")
)

// ErrSchemaMismatch is returned when a journal file was written by an
// incompatible layout.
var ErrSchemaMismatch = errors.New("journal schema mismatch")

// DB is an open journal file.
type DB struct {
	db   *bolt.DB
	path string
}

// Open opens the journal file at path, creating the file, its directory and
// its buckets as needed. It waits at most a second for the file lock.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if err := db.Update(initSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal %s: %w", path, err)
	}
	return &DB{db: db, path: path}, nil
}

func initSchema(tx *bolt.Tx) error {
	if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
		return err
	}
	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return err
	}
	switch v := meta.Get(keySchema); {
	case v == nil:
		return meta.Put(keySchema, []byte(schemaVersion))
	case string(v) != schemaVersion:
		return fmt.Errorf("%w: file has %q, want %q", ErrSchemaMismatch, v, schemaVersion)
	}
	return nil
}

// Path returns the file the journal lives in.
func (d *DB) Path() string { return d.path }

// Close releases the file lock.
func (d *DB) Close() error {
	return d.db.Close()
}

// Bolt exposes the underlying handle.
func (d *DB) Bolt() *bolt.DB {
	return d.db
}
