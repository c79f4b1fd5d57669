package plugin

import (
	"context"

	"github.com/kiosk404/scenekit/internal/scene"
)

// Host is what a scene plugin attaches to: anything that exposes a scene
// systems registry. *scene.Scene satisfies it.
type Host interface {
	Systems() *scene.Systems
}

// Booter is the boot hook of a scene plugin. It runs once, when the host
// scene emits boot, after the plugin's scene and systems references are set.
type Booter interface {
	Boot()
}

// Instance is a scene plugin as seen by the Manager. Concrete plugins get
// Booted (and the rest of the contract) by embedding *ScenePlugin.
type Instance interface {
	Booter
	Booted() bool
	Destroy()
}

// GlobalPlugin is a game-wide plugin with a start/stop lifecycle managed by
// the Manager. Embedding *BasePlugin provides no-op defaults.
type GlobalPlugin interface {
	// Init is called once after the plugin is created, with the Data of its
	// definition.
	Init(data interface{}) error

	// Start is called when the plugin becomes active.
	Start(ctx context.Context) error

	// Stop is called when the plugin becomes inactive.
	Stop(ctx context.Context) error

	// Destroy is called once when the plugin is removed.
	Destroy()
}

// Args is a map of arguments passed to a plugin factory.
// These arguments are typically configuration values or dependencies.
type Args map[string]interface{}

// GlobalFactory creates a global plugin instance.
type GlobalFactory func(m *Manager, args Args) (GlobalPlugin, error)

// SceneFactory creates a scene plugin instance for one scene. It is called
// while the scene is initialising, before boot is emitted.
type SceneFactory func(host Host, m *Manager, args Args) (Instance, error)

// Definition is the static metadata shared by global and scene plugins.
type Definition struct {
	// Key identifies the plugin in the manager and in each scene's systems.
	// Must be unique across global and scene plugins.
	Key string `json:"key"`
	// Name is a human-readable name.
	Name string `json:"name"`
	// Kind groups scene plugins into exclusive slots. Empty or "general"
	// means no slot constraint.
	Kind string `json:"kind,omitempty"`
	// Mapping, when set, exposes the plugin on each scene under this name.
	Mapping     string `json:"mapping,omitempty"`
	Description string `json:"description,omitempty"`
}

// GlobalDefinition registers a global plugin.
type GlobalDefinition struct {
	Definition
	// Start makes the manager start the plugin right after Init.
	Start   bool
	Data    interface{}
	Args    Args
	Factory GlobalFactory
}

// SceneDefinition registers a plugin installed into every scene.
type SceneDefinition struct {
	Definition
	Args    Args
	Factory SceneFactory
}
