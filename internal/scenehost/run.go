package scenehost

import (
	"context"
	"fmt"

	"github.com/kiosk404/scenekit/internal/game"
	"github.com/kiosk404/scenekit/internal/plugin/builtin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
	"github.com/kiosk404/scenekit/internal/scenehost/config"
	"github.com/kiosk404/scenekit/internal/scenehost/options"
	"github.com/kiosk404/scenekit/pkg/logger"
)

// Run builds the game from cfg, boots it and runs the loop until ctx ends or
// the configured frame budget is spent. When loader watches a config file,
// viewport changes are forwarded to the running scenes.
func Run(ctx context.Context, cfg *config.Config, loader *Loader) error {
	g, closeFn, err := Build(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := g.Boot(ctx); err != nil {
		g.Destroy(context.Background())
		return err
	}
	defer g.Destroy(context.Background())

	if loader != nil {
		loader.Watch(func(opts *options.Options) {
			g.Resize(opts.GameOptions.Width, opts.GameOptions.Height)
		})
	}

	return g.Run(ctx)
}

// Build creates the game with the built-in plugins installed. The returned
// function releases the journal store and must be called after the game is
// destroyed.
func Build(cfg *config.Config) (*game.Game, func(), error) {
	var journalStore store.Store
	journalCfg := builtin.ResolveJournalConfig(cfg.PluginOptions)
	if journalCfg.Enabled {
		st, err := journal.OpenStore(journalCfg)
		if err != nil {
			return nil, nil, err
		}
		journalStore = st
	}
	closeFn := func() {
		if journalStore == nil {
			return
		}
		if err := journalStore.Close(); err != nil {
			logger.Warn("[Scenehost] close journal store: %v", err)
		}
	}

	g, err := cfg.GameConfig().Complete().New()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to create game: %w", err)
	}

	reg, err := builtin.NewInTreeRegistry(cfg.PluginOptions, builtin.Deps{
		Controller:   g,
		Metrics:      g.Metrics(),
		JournalStore: journalStore,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := g.Install(reg); err != nil {
		closeFn()
		return nil, nil, err
	}
	return g, closeFn, nil
}
