package store

import (
	"context"
	"errors"

	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("journal store is closed")

// Store persists journal entries. Implementations must be safe for
// concurrent use since every scene's journal shares one store.
type Store interface {
	// Append records an entry.
	Append(ctx context.Context, e *entity.Entry) error

	// List returns the entries of a scene in the order they were appended.
	// An empty scene key lists every entry.
	List(ctx context.Context, scene string) ([]*entity.Entry, error)

	// Count returns the number of entries recorded for a scene, or for all
	// scenes when the key is empty.
	Count(ctx context.Context, scene string) (int, error)

	// Close releases the backend.
	Close() error
}
