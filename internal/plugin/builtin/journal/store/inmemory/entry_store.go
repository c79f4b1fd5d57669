package inmemory

import (
	"context"
	"sync"

	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
)

type EntryStore struct {
	mu      sync.RWMutex
	entries []*entity.Entry
	closed  bool
}

var _ store.Store = (*EntryStore)(nil)

func NewEntryStore() *EntryStore {
	return &EntryStore{}
}

func (s *EntryStore) Append(_ context.Context, e *entity.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *EntryStore) List(_ context.Context, scene string) ([]*entity.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	entries := make([]*entity.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if scene == "" || e.Scene == scene {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *EntryStore) Count(ctx context.Context, scene string) (int, error) {
	entries, err := s.List(ctx, scene)
	return len(entries), err
}

func (s *EntryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}
