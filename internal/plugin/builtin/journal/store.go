package journal

import (
	"fmt"

	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store/boltdb"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store/inmemory"
	"github.com/kiosk404/scenekit/pkg/logger"
)

// OpenStore opens the store selected by cfg.Store.Driver.
func OpenStore(cfg *entity.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", entity.DriverMemory:
		return inmemory.NewEntryStore(), nil
	case entity.DriverBoltDB:
		db, err := boltdb.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		logger.InfoX("journal", "recording to %s", cfg.Store.Path)
		return boltdb.NewEntryStore(db), nil
	default:
		return nil, fmt.Errorf("journal: unknown store driver %q", cfg.Store.Driver)
	}
}
