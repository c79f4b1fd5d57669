// Package scene implements the host side of the scene plugin contract:
// a Scene owns one Systems, and Systems owns the lifecycle event source that
// plugins subscribe to.
package scene

import (
	"sort"
	"sync"

	"github.com/bytedance/gg/gptr"
)

// Creator is implemented by scene behaviours that build state once the
// scene has started.
type Creator interface {
	Create(data Data)
}

// Updater is implemented by scene behaviours that run logic every step,
// between the update and postupdate notifications.
type Updater interface {
	Update(now, delta float64)
}

// Config describes a scene to add to a Manager.
type Config struct {
	Key string
	// Active starts the scene as soon as it boots. Defaults to false.
	Active *bool
	// Visible is the initial visibility. Defaults to true.
	Visible *bool
	// Data is passed to Start when Active is set.
	Data Data
	// Behaviour may implement Creator and/or Updater.
	Behaviour interface{}
}

// Scene is one unit of application state with its own lifecycle.
type Scene struct {
	key       string
	behaviour interface{}
	sys       *Systems

	mu     sync.RWMutex
	mapped map[string]interface{}
}

// New builds a scene and its systems in the pending state.
func New(cfg Config) (*Scene, error) {
	if cfg.Key == "" {
		return nil, ErrEmptyKey
	}
	s := &Scene{
		key:       cfg.Key,
		behaviour: cfg.Behaviour,
		mapped:    make(map[string]interface{}),
	}
	s.sys = newSystems(s, Settings{
		Key:     cfg.Key,
		Status:  StatusPending,
		Visible: gptr.IndirectOr(cfg.Visible, true),
	})
	return s, nil
}

// Key returns the scene's unique key.
func (s *Scene) Key() string { return s.key }

// Systems returns the scene's systems registry.
func (s *Scene) Systems() *Systems { return s.sys }

// Map exposes a plugin on the scene under mapping, replacing any previous
// value.
func (s *Scene) Map(mapping string, p interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapped[mapping] = p
}

// Unmap removes the plugin mapped under mapping.
func (s *Scene) Unmap(mapping string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mapped, mapping)
}

// Plugin returns the plugin mapped under mapping.
func (s *Scene) Plugin(mapping string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.mapped[mapping]
	return p, ok
}

// Mappings returns the mapped names in sorted order.
func (s *Scene) Mappings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.mapped))
	for name := range s.mapped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scene) create(data Data) {
	if c, ok := s.behaviour.(Creator); ok {
		c.Create(data)
	}
}

func (s *Scene) update(now, delta float64) {
	if u, ok := s.behaviour.(Updater); ok {
		u.Update(now, delta)
	}
}
