package builtin

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	genericoptions "github.com/kiosk404/scenekit/internal/pkg/options"
	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/framestats"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/inspector"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal"
	journalentity "github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store/inmemory"
	"github.com/kiosk404/scenekit/pkg/logger"
)

// Deps are the runtime dependencies the built-in plugins are wired to.
type Deps struct {
	// Controller gives the inspector access to the scenes. The inspector is
	// skipped when nil.
	Controller inspector.Controller
	// Metrics receives the framestats collectors and is served by the
	// inspector.
	Metrics *prometheus.Registry
	// JournalStore receives journal entries. An in-memory store is used when
	// nil.
	JournalStore store.Store
}

// NewInTreeRegistry creates a new in-tree plugin registry with the default plugins.
// Configuration is sourced from PluginsOptions (plugins.entries.<key>.config).
// The default plugins are:
//   - journal: records scene lifecycle notifications (scene plugin, recorder slot)
//   - framestats: frame counters and Prometheus metrics (scene plugin, stats slot)
//   - inspector: HTTP API over scenes, plugins and metrics (global plugin)
func NewInTreeRegistry(opts *genericoptions.PluginsOptions, deps Deps) (*plugin.InTreeRegistry, error) {
	registry := plugin.NewInTreeRegistry()
	if opts == nil {
		opts = genericoptions.NewPluginsOptions()
	}
	if !opts.Enabled {
		logger.Info("[Plugin] built-in plugins disabled (plugins.enabled=false)")
		return registry, nil
	}

	journalStore := deps.JournalStore
	if journalStore == nil {
		journalStore = inmemory.NewEntryStore()
	}

	// --- journal: scene lifecycle recorder
	if opts.IsEnabled(journal.PluginName) {
		registry.RegisterScene(plugin.SceneDefinition{
			Definition: journal.PluginDefinition(),
			Args: plugin.Args{
				"config": ResolveJournalConfig(opts),
				"store":  journalStore,
			},
			Factory: journal.Factory,
		})
	}

	// --- framestats: per-scene frame metrics
	if opts.IsEnabled(framestats.PluginName) {
		reg := deps.Metrics
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		metrics, err := framestats.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("framestats: %w", err)
		}
		registry.RegisterScene(plugin.SceneDefinition{
			Definition: framestats.PluginDefinition(),
			Args:       plugin.Args{"metrics": metrics},
			Factory:    framestats.Factory,
		})
	}

	// --- inspector: HTTP API
	if opts.IsEnabled(inspector.PluginName) {
		if deps.Controller == nil {
			logger.Warn("[Plugin] inspector enabled but no scene controller supplied, skipping")
			return registry, nil
		}
		args := plugin.Args{
			"config":     resolveInspectorConfig(opts),
			"controller": deps.Controller,
			"journal":    journalStore,
		}
		if deps.Metrics != nil {
			args["gatherer"] = deps.Metrics
		}
		registry.RegisterGlobal(plugin.GlobalDefinition{
			Definition: inspector.PluginDefinition(),
			Start:      true,
			Args:       args,
			Factory:    inspector.Factory,
		})
	}

	return registry, nil
}

// ResolveJournalConfig resolves the journal config from the given options.
func ResolveJournalConfig(opts *genericoptions.PluginsOptions) *journalentity.Config {
	cfg := journalentity.DefaultConfig()
	if opts == nil {
		return cfg
	}
	cfg.Enabled = opts.IsEnabled(journal.PluginName)

	entry := opts.EntryConfig(journal.PluginName)
	if v, ok := entry["driver"].(string); ok && v != "" {
		cfg.Store.Driver = v
	}
	if v, ok := entry["path"].(string); ok && v != "" {
		cfg.Store.Path = v
	}
	if v, ok := entry["record_frames"].(bool); ok {
		cfg.RecordFrames = v
	}
	return cfg
}

// resolveInspectorConfig resolves the inspector config from the given options.
func resolveInspectorConfig(opts *genericoptions.PluginsOptions) *inspector.Config {
	cfg := inspector.DefaultConfig()
	entry := opts.EntryConfig(inspector.PluginName)

	if v, ok := entry["addr"].(string); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := entry["token"].(string); ok {
		cfg.Token = v
	}
	if v, ok := entry["pprof"].(bool); ok {
		cfg.Pprof = v
	}
	if v, ok := entry["shutdown_timeout"].(string); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		} else {
			logger.Warn("[Plugin] inspector: invalid shutdown_timeout %q: %v", v, err)
		}
	}
	return cfg
}
