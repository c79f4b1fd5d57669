package plugin

// InTreeRegistry is a pre-configured set of built-in plugin definitions.
// All default plugins are registered in a single place and applied to a
// Manager in one call.
//
// Out-of-tree plugins can be added via Manager.InstallGlobal and
// Manager.InstallScenePlugin directly.
type InTreeRegistry struct {
	globals []GlobalDefinition
	scenes  []SceneDefinition
}

// NewInTreeRegistry creates a new in-tree plugin registry.
func NewInTreeRegistry() *InTreeRegistry {
	return &InTreeRegistry{}
}

// RegisterGlobal adds a global plugin definition.
func (r *InTreeRegistry) RegisterGlobal(def GlobalDefinition) {
	r.globals = append(r.globals, def)
}

// RegisterScene adds a scene plugin definition.
func (r *InTreeRegistry) RegisterScene(def SceneDefinition) {
	r.scenes = append(r.scenes, def)
}

// Len returns the number of registered definitions.
func (r *InTreeRegistry) Len() int {
	return len(r.globals) + len(r.scenes)
}

// ApplyTo installs all in-tree definitions into the given Manager.
func (r *InTreeRegistry) ApplyTo(m *Manager) error {
	for _, def := range r.globals {
		if err := m.InstallGlobal(def); err != nil {
			return err
		}
	}
	for _, def := range r.scenes {
		if err := m.InstallScenePlugin(def); err != nil {
			return err
		}
	}
	return nil
}
