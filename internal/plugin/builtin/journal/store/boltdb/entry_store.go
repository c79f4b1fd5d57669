package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/boltdb/bolt"

	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
	"github.com/kiosk404/scenekit/pkg/utils/json"
)

// EntryStore is a BoltDB-backed journal store. Entries are keyed by the
// bucket sequence so iteration follows append order.
type EntryStore struct {
	db *DB
}

var _ store.Store = (*EntryStore)(nil)

// NewEntryStore creates a new EntryStore. The store owns db and closes it.
func NewEntryStore(db *DB) *EntryStore {
	return &EntryStore{db: db}
}

func (s *EntryStore) Append(_ context.Context, e *entity.Entry) error {
	err := s.db.Bolt().Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		return b.Put(sequenceKey(seq), data)
	})
	if err == bolt.ErrDatabaseNotOpen {
		return store.ErrClosed
	}
	return err
}

func (s *EntryStore) List(_ context.Context, scene string) ([]*entity.Entry, error) {
	var entries []*entity.Entry
	err := s.db.Bolt().View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		return b.ForEach(func(k, v []byte) error {
			var e entity.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
			if scene == "" || e.Scene == scene {
				entries = append(entries, &e)
			}
			return nil
		})
	})
	if err != nil {
		if err == bolt.ErrDatabaseNotOpen {
			return nil, store.ErrClosed
		}
		return nil, fmt.Errorf("failed to list entries for scene %q: %w", scene, err)
	}
	return entries, nil
}

func (s *EntryStore) Count(ctx context.Context, scene string) (int, error) {
	if scene == "" {
		n := 0
		err := s.db.Bolt().View(func(tx *bolt.Tx) error {
			n = tx.Bucket(bucketEntries).Stats().KeyN
			return nil
		})
		if err == bolt.ErrDatabaseNotOpen {
			return 0, store.ErrClosed
		}
		return n, err
	}
	entries, err := s.List(ctx, scene)
	return len(entries), err
}

func (s *EntryStore) Close() error {
	return s.db.Close()
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
