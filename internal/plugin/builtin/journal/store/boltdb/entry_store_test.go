package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
)

func openStore(t *testing.T, path string) *EntryStore {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	return NewEntryStore(db)
}

func TestEntryStore_AppendList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "nested", "journal.db"))
	defer s.Close()

	for _, e := range []*entity.Entry{
		entity.NewEntry("menu", "boot", "init"),
		entity.NewEntry("level", "boot", "init"),
		entity.NewEntry("menu", "start", "start"),
	} {
		require.NoError(t, s.Append(ctx, e))
	}

	menu, err := s.List(ctx, "menu")
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "boot", menu[0].Event)
	assert.Equal(t, "start", menu[1].Event)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = s.Count(ctx, "level")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEntryStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	s := openStore(t, path)
	e := entity.NewEntry("menu", "pause", "paused")
	e.Data = map[string]interface{}{"reason": "menu"}
	require.NoError(t, s.Append(ctx, e))
	require.NoError(t, s.Close())

	s = openStore(t, path)
	defer s.Close()
	entries, err := s.List(ctx, "menu")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].ID)
	assert.Equal(t, "menu", entries[0].Data["reason"])
	assert.True(t, e.At.Equal(entries[0].At))
}

func TestEntryStore_Closed(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, s.Close())

	err := s.Append(context.Background(), entity.NewEntry("menu", "boot", "init"))
	assert.ErrorIs(t, err, store.ErrClosed)
	_, err = s.List(context.Background(), "")
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestOpen_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())

	require.NoError(t, db.Bolt().Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySchema, []byte("0"))
	}))
	require.NoError(t, db.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
