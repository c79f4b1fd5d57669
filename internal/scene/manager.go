package scene

import (
	"fmt"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/kiosk404/scenekit/pkg/logger"
)

// TransitionConfig describes a timed hand-over from one scene to another.
type TransitionConfig struct {
	From     string
	To       string
	Duration time.Duration
	// Sleep puts the source scene to sleep instead of stopping it once the
	// transition completes.
	Sleep bool
	// Remove destroys the source scene once the transition completes.
	// Takes precedence over Sleep.
	Remove bool
	// Data is passed to the target's start or wake.
	Data Data
}

type transition struct {
	cfg     TransitionConfig
	elapsed time.Duration
}

// Manager owns a set of scenes, boots them through an Installer and steps
// the running ones each frame.
//
// Scene methods emit notifications synchronously, so the manager never holds
// its own lock while calling into a scene.
type Manager struct {
	scenes cmap.ConcurrentMap[string, *Scene]

	mu          sync.Mutex
	order       []string
	installer   Installer
	booted      bool
	autoStart   map[string]Data
	transitions map[string]*transition
}

// NewManager creates an empty, unbooted scene manager.
func NewManager() *Manager {
	return &Manager{
		scenes:      cmap.New[*Scene](),
		autoStart:   make(map[string]Data),
		transitions: make(map[string]*transition),
	}
}

// Add creates a scene from cfg. When the manager is already booted the scene
// is booted immediately, and started if cfg.Active is set.
func (m *Manager) Add(cfg Config) (*Scene, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if !m.scenes.SetIfAbsent(cfg.Key, s) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateScene, cfg.Key)
	}

	m.mu.Lock()
	m.order = append(m.order, cfg.Key)
	booted := m.booted
	installer := m.installer
	if !booted && cfg.Active != nil && *cfg.Active {
		m.autoStart[cfg.Key] = cfg.Data
	}
	m.mu.Unlock()

	if booted {
		if err := m.bootScene(s, installer, cfg.Active != nil && *cfg.Active, cfg.Data); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Boot initialises every pending scene through installer and starts the
// ones configured as active.
func (m *Manager) Boot(installer Installer) error {
	m.mu.Lock()
	if m.booted {
		m.mu.Unlock()
		return ErrAlreadyBooted
	}
	m.booted = true
	m.installer = installer
	keys := append([]string(nil), m.order...)
	autoStart := m.autoStart
	m.autoStart = make(map[string]Data)
	m.mu.Unlock()

	for _, key := range keys {
		s, ok := m.scenes.Get(key)
		if !ok {
			continue
		}
		data, active := autoStart[key]
		if err := m.bootScene(s, installer, active, data); err != nil {
			return err
		}
	}
	logger.Info("[SceneManager] booted %d scenes", len(keys))
	return nil
}

func (m *Manager) bootScene(s *Scene, installer Installer, active bool, data Data) error {
	if err := s.sys.Init(installer); err != nil {
		return err
	}
	if active {
		return m.start(s, data)
	}
	return nil
}

// start (re)starts a booted scene and runs its create step.
func (m *Manager) start(s *Scene, data Data) error {
	sys := s.sys
	if sys.IsActive() || sys.IsPaused() {
		if err := sys.Shutdown(nil); err != nil {
			return err
		}
	}
	if err := sys.Start(data); err != nil {
		return err
	}
	return sys.Create()
}

// Get returns the scene stored under key.
func (m *Manager) Get(key string) (*Scene, bool) {
	return m.scenes.Get(key)
}

// Keys returns scene keys in the order they were added.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Scenes returns the scenes in the order they were added.
func (m *Manager) Scenes() []*Scene {
	keys := m.Keys()
	result := make([]*Scene, 0, len(keys))
	for _, key := range keys {
		if s, ok := m.scenes.Get(key); ok {
			result = append(result, s)
		}
	}
	return result
}

// Len returns the number of scenes.
func (m *Manager) Len() int {
	return m.scenes.Count()
}

func (m *Manager) lookup(key string) (*Scene, error) {
	s, ok := m.scenes.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, key)
	}
	return s, nil
}

// Start starts the scene, shutting it down first if it is running. Before
// Boot, the scene is queued to start once the manager boots.
func (m *Manager) Start(key string, data Data) error {
	s, err := m.lookup(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if !m.booted {
		m.autoStart[key] = data
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	return m.start(s, data)
}

// Stop shuts the scene down.
func (m *Manager) Stop(key string, data Data) error {
	s, err := m.lookup(key)
	if err != nil {
		return err
	}
	return s.sys.Shutdown(data)
}

func (m *Manager) Pause(key string, data Data) error {
	s, err := m.lookup(key)
	if err != nil {
		return err
	}
	return s.sys.Pause(data)
}

func (m *Manager) Resume(key string, data Data) error {
	s, err := m.lookup(key)
	if err != nil {
		return err
	}
	return s.sys.Resume(data)
}

func (m *Manager) Sleep(key string, data Data) error {
	s, err := m.lookup(key)
	if err != nil {
		return err
	}
	return s.sys.Sleep(data)
}

func (m *Manager) Wake(key string, data Data) error {
	s, err := m.lookup(key)
	if err != nil {
		return err
	}
	return s.sys.Wake(data)
}

// Remove destroys the scene and forgets it.
func (m *Manager) Remove(key string) error {
	s, err := m.lookup(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	delete(m.autoStart, key)
	for target, t := range m.transitions {
		if target == key || t.cfg.From == key {
			delete(m.transitions, target)
		}
	}
	m.mu.Unlock()

	s.sys.Destroy()
	m.scenes.Remove(key)
	return nil
}

// Resize forwards the viewport size to every booted scene.
func (m *Manager) Resize(width, height int) {
	for _, s := range m.Scenes() {
		if s.sys.IsBooted() && !s.sys.IsDestroyed() {
			s.sys.Resize(width, height)
		}
	}
}

// Update steps every started scene in insertion order and advances running
// transitions by delta milliseconds. Transitions finishing in the same frame
// complete in the insertion order of their targets.
func (m *Manager) Update(now, delta float64) {
	for _, s := range m.Scenes() {
		if s.sys.Status().steppable() {
			s.sys.Step(now, delta)
		}
	}

	step := time.Duration(delta * float64(time.Millisecond))
	var done []TransitionConfig

	m.mu.Lock()
	for _, target := range m.order {
		t, ok := m.transitions[target]
		if !ok {
			continue
		}
		t.elapsed += step
		if t.elapsed >= t.cfg.Duration {
			done = append(done, t.cfg)
			delete(m.transitions, target)
		}
	}
	m.mu.Unlock()

	for _, cfg := range done {
		m.completeTransition(cfg)
	}
}

// Transition hands over from cfg.From to cfg.To. The source must be active,
// the target must be neither active nor paused, and neither side may be in
// another transition.
func (m *Manager) Transition(cfg TransitionConfig) error {
	if cfg.From == cfg.To {
		return ErrSelfTransition
	}
	from, err := m.lookup(cfg.From)
	if err != nil {
		return err
	}
	to, err := m.lookup(cfg.To)
	if err != nil {
		return err
	}

	if from.sys.IsTransitioning() || to.sys.IsTransitioning() {
		return ErrTransitionBusy
	}
	if !from.sys.IsActive() {
		return fmt.Errorf("%w: source %q is not active", ErrInvalidState, cfg.From)
	}
	if to.sys.IsActive() || to.sys.IsPaused() {
		return fmt.Errorf("%w: target %q is already running", ErrInvalidState, cfg.To)
	}
	if !to.sys.IsBooted() {
		return fmt.Errorf("%w: target %q", ErrNotBooted, cfg.To)
	}

	from.sys.markTransitionOut()
	from.sys.events.Emit(EventTransitionOut, from.sys, cfg.To, cfg.Duration)

	to.sys.markTransitionIn(cfg.From, cfg.Duration)
	to.sys.events.Emit(EventTransitionInit, to.sys, cfg.From, cfg.Duration)

	if to.sys.IsSleeping() {
		err = to.sys.Wake(cfg.Data)
	} else {
		err = m.start(to, cfg.Data)
	}
	if err != nil {
		from.sys.endTransition()
		to.sys.endTransition()
		return fmt.Errorf("start transition target %q: %w", cfg.To, err)
	}

	to.sys.events.Emit(EventTransitionStart, to.sys, cfg.From, cfg.Duration)

	if cfg.Duration <= 0 {
		m.completeTransition(cfg)
		return nil
	}

	m.mu.Lock()
	m.transitions[cfg.To] = &transition{cfg: cfg}
	m.mu.Unlock()
	return nil
}

func (m *Manager) completeTransition(cfg TransitionConfig) {
	if to, ok := m.scenes.Get(cfg.To); ok {
		to.sys.endTransition()
		to.sys.events.Emit(EventTransitionComplete, to.sys, cfg.From, cfg.Duration)
	}

	from, ok := m.scenes.Get(cfg.From)
	if !ok {
		return
	}
	from.sys.endTransition()

	var err error
	switch {
	case cfg.Remove:
		err = m.Remove(cfg.From)
	case cfg.Sleep:
		err = from.sys.Sleep(nil)
	default:
		err = from.sys.Shutdown(nil)
	}
	if err != nil {
		logger.Warn("[SceneManager] finish transition %q -> %q: %v", cfg.From, cfg.To, err)
	}
}

// Transitioning reports whether a timed transition into key is in flight.
func (m *Manager) Transitioning(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.transitions[key]
	return ok
}

// Destroy destroys every scene, most recently added first.
func (m *Manager) Destroy() {
	keys := m.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		if err := m.Remove(keys[i]); err != nil {
			logger.Warn("[SceneManager] destroy %q: %v", keys[i], err)
		}
	}
}
