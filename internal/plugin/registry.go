package plugin

import (
	"fmt"
	"sync"
)

// Scope tells global and scene plugins apart in listings.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeScene  Scope = "scene"
)

// Info describes a registered plugin for diagnostics.
type Info struct {
	Definition
	Scope  Scope `json:"scope"`
	Active bool  `json:"active"`
	// Started is false for globals that have not been instantiated yet.
	Started bool `json:"started"`
}

// InstanceInfo describes one scene plugin instance.
type InstanceInfo struct {
	Scene   string `json:"scene"`
	Key     string `json:"key"`
	Kind    string `json:"kind,omitempty"`
	Mapping string `json:"mapping,omitempty"`
	Booted  bool   `json:"booted"`
}

// Registry is the central record of plugin definitions, global plugin
// instances and the scene plugin instances living in each scene.
//
// Thread-safe: all mutations are guarded by a mutex.
type Registry struct {
	mu sync.RWMutex

	// keys holds every registered key, global or scene.
	keys map[string]Scope

	// globalOrder preserves the installation order of global plugins.
	globalOrder []string
	globals     map[string]*globalEntry

	// sceneDefs holds scene plugin definitions in installation order.
	sceneDefs []SceneDefinition

	// instances maps scene key → plugin instances in installation order.
	instances map[string][]instanceEntry
}

// globalEntry tracks a global plugin definition and its live instance.
type globalEntry struct {
	def    GlobalDefinition
	plugin GlobalPlugin
	active bool
}

// instanceEntry tracks which definition produced a scene plugin instance.
type instanceEntry struct {
	def      Definition
	instance Instance
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		keys:      make(map[string]Scope),
		globals:   make(map[string]*globalEntry),
		instances: make(map[string][]instanceEntry),
	}
}

// --- Registration methods (called by Manager) ---

func (r *Registry) addGlobal(def GlobalDefinition) (*globalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if scope, exists := r.keys[def.Key]; exists {
		return nil, fmt.Errorf("%w: %q (%s)", ErrDuplicateKey, def.Key, scope)
	}
	entry := &globalEntry{def: def}
	r.keys[def.Key] = ScopeGlobal
	r.globals[def.Key] = entry
	r.globalOrder = append(r.globalOrder, def.Key)
	return entry, nil
}

func (r *Registry) addScene(def SceneDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if scope, exists := r.keys[def.Key]; exists {
		return fmt.Errorf("%w: %q (%s)", ErrDuplicateKey, def.Key, scope)
	}
	r.keys[def.Key] = ScopeScene
	r.sceneDefs = append(r.sceneDefs, def)
	return nil
}

func (r *Registry) removeGlobal(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.keys, key)
	delete(r.globals, key)
	for i, k := range r.globalOrder {
		if k == key {
			r.globalOrder = append(r.globalOrder[:i:i], r.globalOrder[i+1:]...)
			break
		}
	}
}

func (r *Registry) addInstance(sceneKey string, def Definition, inst Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instances[sceneKey] = append(r.instances[sceneKey], instanceEntry{def: def, instance: inst})
}

func (r *Registry) dropScene(sceneKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, sceneKey)
}

func (r *Registry) global(key string) (*globalEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.globals[key]
	return e, ok
}

// globalEntries returns the global entries in installation order.
func (r *Registry) globalEntries() []*globalEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*globalEntry, 0, len(r.globalOrder))
	for _, key := range r.globalOrder {
		result = append(result, r.globals[key])
	}
	return result
}

// sceneDefinitions returns the scene plugin definitions in installation order.
func (r *Registry) sceneDefinitions() []SceneDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]SceneDefinition, len(r.sceneDefs))
	copy(result, r.sceneDefs)
	return result
}

func (r *Registry) setActive(e *globalEntry, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.active = active
}

func (r *Registry) setPlugin(e *globalEntry, p GlobalPlugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.plugin = p
}

func (r *Registry) snapshot(e *globalEntry) (GlobalPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return e.plugin, e.active
}

// --- Query methods ---

// Definitions lists every registered plugin, globals first, each group in
// installation order.
func (r *Registry) Definitions() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.keys))
	for _, key := range r.globalOrder {
		e := r.globals[key]
		result = append(result, Info{
			Definition: e.def.Definition,
			Scope:      ScopeGlobal,
			Active:     e.active,
			Started:    e.plugin != nil,
		})
	}
	for _, def := range r.sceneDefs {
		result = append(result, Info{Definition: def.Definition, Scope: ScopeScene})
	}
	return result
}

// Instances returns the scene plugin instances installed into sceneKey.
func (r *Registry) Instances(sceneKey string) []InstanceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.instances[sceneKey]
	result := make([]InstanceInfo, 0, len(entries))
	for _, e := range entries {
		result = append(result, InstanceInfo{
			Scene:   sceneKey,
			Key:     e.def.Key,
			Kind:    e.def.Kind,
			Mapping: e.def.Mapping,
			Booted:  e.instance.Booted(),
		})
	}
	return result
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.keys[key]
	return ok
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}
