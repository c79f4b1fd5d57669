package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/kiosk404/scenekit/internal/scene"
	"github.com/kiosk404/scenekit/pkg/logger"
)

// Manager owns global plugins and installs scene plugins into scenes.
// It orchestrates: definition install → Boot (global Init/Start) →
// InstallScene per scene → Destroy.
//
// Manager implements scene.Installer, so a scene.Manager boots its scenes
// through it.
type Manager struct {
	registry   *Registry
	slotConfig SlotConfig

	mu     sync.Mutex
	booted bool
}

var _ scene.Installer = (*Manager)(nil)

// Config holds the configuration for creating a Manager.
// Follows the Config → Complete() → New() pattern.
type Config struct {
	// SlotConfig controls which scene plugin is installed per slot kind.
	SlotConfig SlotConfig
}

// CompletedConfig is the validated and completed manager configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills in defaults for the manager configuration.
func (c *Config) Complete() CompletedConfig {
	if c.SlotConfig == nil {
		c.SlotConfig = make(SlotConfig)
	}
	return CompletedConfig{c}
}

// New creates a new Manager from the completed configuration.
func (c CompletedConfig) New() *Manager {
	return &Manager{
		registry:   NewRegistry(),
		slotConfig: c.SlotConfig,
	}
}

// --- Installation ---

// InstallGlobal registers a global plugin. Before Boot the plugin is only
// recorded; after Boot it is created, initialised and, if def.Start is set,
// started right away.
func (m *Manager) InstallGlobal(def GlobalDefinition) error {
	if def.Key == "" {
		return ErrEmptyKey
	}
	if def.Factory == nil {
		return fmt.Errorf("%w: %q", ErrNilFactory, def.Key)
	}
	entry, err := m.registry.addGlobal(def)
	if err != nil {
		return err
	}

	m.mu.Lock()
	booted := m.booted
	m.mu.Unlock()

	if booted {
		if err := m.bootGlobal(context.Background(), entry); err != nil {
			m.registry.removeGlobal(def.Key)
			return err
		}
	}
	return nil
}

// InstallScenePlugin registers a plugin installed into every scene that
// initialises after this call.
func (m *Manager) InstallScenePlugin(def SceneDefinition) error {
	if def.Key == "" {
		return ErrEmptyKey
	}
	if def.Factory == nil {
		return fmt.Errorf("%w: %q", ErrNilFactory, def.Key)
	}
	return m.registry.addScene(def)
}

// --- Lifecycle ---

// Boot creates and initialises every installed global plugin and starts the
// ones whose definition asks for it.
func (m *Manager) Boot(ctx context.Context) error {
	m.mu.Lock()
	if m.booted {
		m.mu.Unlock()
		return ErrAlreadyBooted
	}
	m.booted = true
	m.mu.Unlock()

	entries := m.registry.globalEntries()
	for _, entry := range entries {
		if err := m.bootGlobal(ctx, entry); err != nil {
			return err
		}
	}

	logger.Info("[Plugin] manager booted: %d global plugins, %d scene plugins",
		len(entries), len(m.registry.sceneDefinitions()))
	return nil
}

func (m *Manager) bootGlobal(ctx context.Context, entry *globalEntry) error {
	def := entry.def
	p, err := def.Factory(m, def.Args)
	if err != nil {
		return fmt.Errorf("failed to create plugin %q: %w", def.Key, err)
	}
	if p == nil {
		return fmt.Errorf("failed to create plugin %q: factory returned nil", def.Key)
	}
	if err := p.Init(def.Data); err != nil {
		return fmt.Errorf("plugin %q Init() failed: %w", def.Key, err)
	}
	m.registry.setPlugin(entry, p)
	logger.Info("[Plugin] loaded global plugin %q", def.Key)

	if def.Start {
		return m.StartPlugin(ctx, def.Key)
	}
	return nil
}

// StartPlugin activates a global plugin. Starting an active plugin is a
// no-op.
func (m *Manager) StartPlugin(ctx context.Context, key string) error {
	entry, p, active, err := m.lookupGlobal(key)
	if err != nil {
		return err
	}
	if active {
		return nil
	}
	logger.Info("[Plugin] starting global plugin %q", key)
	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("plugin %q Start() failed: %w", key, err)
	}
	m.registry.setActive(entry, true)
	return nil
}

// StopPlugin deactivates a global plugin. Stopping an inactive plugin is a
// no-op.
func (m *Manager) StopPlugin(ctx context.Context, key string) error {
	entry, p, active, err := m.lookupGlobal(key)
	if err != nil {
		return err
	}
	if !active {
		return nil
	}
	logger.Info("[Plugin] stopping global plugin %q", key)
	m.registry.setActive(entry, false)
	if err := p.Stop(ctx); err != nil {
		return fmt.Errorf("plugin %q Stop() failed: %w", key, err)
	}
	return nil
}

func (m *Manager) lookupGlobal(key string) (*globalEntry, GlobalPlugin, bool, error) {
	entry, ok := m.registry.global(key)
	if !ok {
		return nil, nil, false, fmt.Errorf("%w: %q", ErrPluginNotFound, key)
	}
	p, active := m.registry.snapshot(entry)
	if p == nil {
		return nil, nil, false, fmt.Errorf("%w: %q", ErrNotBooted, key)
	}
	return entry, p, active, nil
}

// GetGlobal returns the live instance of a global plugin.
func (m *Manager) GetGlobal(key string) (GlobalPlugin, bool) {
	entry, ok := m.registry.global(key)
	if !ok {
		return nil, false
	}
	p, _ := m.registry.snapshot(entry)
	return p, p != nil
}

// IsActive reports whether a global plugin is started.
func (m *Manager) IsActive(key string) bool {
	entry, ok := m.registry.global(key)
	if !ok {
		return false
	}
	_, active := m.registry.snapshot(entry)
	return active
}

// RemoveGlobal stops and destroys a global plugin and forgets it.
func (m *Manager) RemoveGlobal(ctx context.Context, key string) error {
	entry, ok := m.registry.global(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrPluginNotFound, key)
	}
	p, active := m.registry.snapshot(entry)
	m.registry.removeGlobal(key)
	if p == nil {
		return nil
	}
	if active {
		if err := p.Stop(ctx); err != nil {
			logger.Warn("[Plugin] plugin %q Stop() error: %v", key, err)
		}
	}
	p.Destroy()
	return nil
}

// InstallScene creates every scene plugin for s, injects each into the
// scene's systems under its key and maps it onto the scene when a mapping is
// set. Global plugins with a mapping are exposed on the scene as well.
//
// It runs while the scene initialises, so each plugin's one-shot boot
// subscription is in place before the scene emits boot. On error everything
// installed so far is destroyed and removed again, leaving the scene as it
// was.
func (m *Manager) InstallScene(s *scene.Scene) (err error) {
	sys := s.Systems()
	activeSlots := make(map[string]string)
	var undo sceneInstall
	defer func() {
		if err != nil {
			undo.rollback(s)
			m.registry.dropScene(s.Key())
		}
	}()

	for _, entry := range m.registry.globalEntries() {
		p, _ := m.registry.snapshot(entry)
		if p == nil || entry.def.Mapping == "" {
			continue
		}
		if err := sys.Inject(entry.def.Key, p); err != nil {
			return err
		}
		undo.keys = append(undo.keys, entry.def.Key)
		s.Map(entry.def.Mapping, p)
		undo.mappings = append(undo.mappings, entry.def.Mapping)
	}

	for _, def := range m.registry.sceneDefinitions() {
		if err := ResolveSlot(def.Definition, activeSlots, m.slotConfig); err != nil {
			logger.Info("[Plugin] skipping plugin %q in scene %q: %v", def.Key, s.Key(), err)
			continue
		}

		inst, err := def.Factory(s, m, def.Args)
		if err != nil {
			return fmt.Errorf("failed to create plugin %q for scene %q: %w", def.Key, s.Key(), err)
		}
		if inst == nil {
			return fmt.Errorf("failed to create plugin %q for scene %q: factory returned nil", def.Key, s.Key())
		}
		undo.instances = append(undo.instances, inst)
		if err := sys.Inject(def.Key, inst); err != nil {
			return err
		}
		undo.keys = append(undo.keys, def.Key)
		if def.Mapping != "" {
			s.Map(def.Mapping, inst)
			undo.mappings = append(undo.mappings, def.Mapping)
		}
		if def.Kind != "" && def.Kind != "general" {
			activeSlots[def.Kind] = def.Key
		}
		m.registry.addInstance(s.Key(), def.Definition, inst)
		logger.Debug("[Plugin] installed plugin %q into scene %q", def.Key, s.Key())
	}

	sceneKey := s.Key()
	sys.Events().Once(scene.EventDestroy, func(args ...interface{}) {
		m.registry.dropScene(sceneKey)
	})
	return nil
}

// sceneInstall records what InstallScene did to a scene so far.
type sceneInstall struct {
	instances []Instance
	keys      []string
	mappings  []string
}

func (u *sceneInstall) rollback(s *scene.Scene) {
	for i := len(u.instances) - 1; i >= 0; i-- {
		u.instances[i].Destroy()
	}
	for _, key := range u.keys {
		s.Systems().Eject(key)
	}
	for _, mapping := range u.mappings {
		s.Unmap(mapping)
	}
	logger.Warn("[Plugin] rolled back %d plugins in scene %q", len(u.instances), s.Key())
}

// Destroy stops and destroys every global plugin, most recently installed
// first.
func (m *Manager) Destroy(ctx context.Context) {
	entries := m.registry.globalEntries()
	for i := len(entries) - 1; i >= 0; i-- {
		if err := m.RemoveGlobal(ctx, entries[i].def.Key); err != nil {
			logger.Warn("[Plugin] remove %q: %v", entries[i].def.Key, err)
		}
	}
}

// --- Accessors ---

// Registry returns the underlying plugin registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Booted reports whether Boot has run.
func (m *Manager) Booted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.booted
}
