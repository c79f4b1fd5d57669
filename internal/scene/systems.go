package scene

import (
	"fmt"
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"github.com/kiosk404/scenekit/pkg/events"
	"github.com/kiosk404/scenekit/pkg/logger"
)

// Installer attaches plugins to a scene during Init, before boot is emitted.
type Installer interface {
	InstallScene(s *Scene) error
}

// Systems is the per-scene registry handed to plugins. It owns the scene's
// event source, the injected plugins and the lifecycle state machine.
//
// State changes happen under the lock; notifications are emitted after it is
// released so listeners may call back into Systems.
type Systems struct {
	scene  *Scene
	events *events.Emitter

	mu          sync.RWMutex
	settings    Settings
	plugins     map[string]interface{}
	pluginOrder []string
}

func newSystems(s *Scene, settings Settings) *Systems {
	return &Systems{
		scene:    s,
		events:   events.NewEmitter(),
		settings: settings,
		plugins:  make(map[string]interface{}),
	}
}

// Scene returns the owning scene.
func (sys *Systems) Scene() *Scene { return sys.scene }

// Events returns the scene's lifecycle event source.
func (sys *Systems) Events() *events.Emitter { return sys.events }

// Key returns the owning scene's key.
func (sys *Systems) Key() string { return sys.scene.key }

// Settings returns a deep copy of the current settings.
func (sys *Systems) Settings() Settings {
	sys.mu.RLock()
	defer sys.mu.RUnlock()

	var out Settings
	if err := copier.CopyWithOption(&out, &sys.settings, copier.Option{DeepCopy: true}); err != nil {
		logger.Warn("[Scene] copy settings of %q: %v", sys.settings.Key, err)
		return sys.settings
	}
	return out
}

// Status returns the current lifecycle status.
func (sys *Systems) Status() Status {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	return sys.settings.Status
}

func (sys *Systems) IsBooted() bool {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	return sys.settings.Booted
}

func (sys *Systems) IsActive() bool {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	return sys.settings.Active
}

func (sys *Systems) IsVisible() bool {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	return sys.settings.Visible
}

func (sys *Systems) IsPaused() bool    { return sys.Status() == StatusPaused }
func (sys *Systems) IsSleeping() bool  { return sys.Status() == StatusSleeping }
func (sys *Systems) IsDestroyed() bool { return sys.Status() == StatusDestroyed }

// IsTransitioning reports whether the scene is either side of a transition.
func (sys *Systems) IsTransitioning() bool {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	return sys.settings.IsTransition || sys.settings.TransitionOut
}

// --- Plugin injection ---

// Inject registers p under key so other plugins can find it.
func (sys *Systems) Inject(key string, p interface{}) error {
	sys.mu.Lock()
	defer sys.mu.Unlock()

	if _, exists := sys.plugins[key]; exists {
		return fmt.Errorf("%w: %q in scene %q", ErrPluginExists, key, sys.settings.Key)
	}
	sys.plugins[key] = p
	sys.pluginOrder = append(sys.pluginOrder, key)
	return nil
}

// Eject removes the plugin injected under key.
func (sys *Systems) Eject(key string) bool {
	sys.mu.Lock()
	defer sys.mu.Unlock()

	if _, exists := sys.plugins[key]; !exists {
		return false
	}
	delete(sys.plugins, key)
	for i, k := range sys.pluginOrder {
		if k == key {
			sys.pluginOrder = append(sys.pluginOrder[:i:i], sys.pluginOrder[i+1:]...)
			break
		}
	}
	return true
}

// Plugin returns the plugin injected under key.
func (sys *Systems) Plugin(key string) (interface{}, bool) {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	p, ok := sys.plugins[key]
	return p, ok
}

// PluginKeys returns the injected keys in installation order.
func (sys *Systems) PluginKeys() []string {
	sys.mu.RLock()
	defer sys.mu.RUnlock()

	result := make([]string, len(sys.pluginOrder))
	copy(result, sys.pluginOrder)
	return result
}

// --- Lifecycle ---

// Init installs plugins through installer and emits boot. It may run only
// once per scene.
func (sys *Systems) Init(installer Installer) error {
	sys.mu.Lock()
	switch {
	case sys.settings.Status == StatusDestroyed:
		sys.mu.Unlock()
		return ErrDestroyed
	case sys.settings.Booted || sys.settings.Status != StatusPending:
		sys.mu.Unlock()
		return ErrAlreadyBooted
	}
	sys.settings.Status = StatusInit
	sys.mu.Unlock()

	if installer != nil {
		if err := installer.InstallScene(sys.scene); err != nil {
			sys.setStatus(StatusPending)
			return fmt.Errorf("install plugins into scene %q: %w", sys.Key(), err)
		}
	}

	sys.events.Emit(EventBoot, sys)

	sys.mu.Lock()
	sys.settings.Booted = true
	sys.mu.Unlock()

	logger.Debug("[Scene] %q booted with %d plugins", sys.Key(), len(sys.PluginKeys()))
	return nil
}

// Start marks the scene active and visible and emits start then ready.
func (sys *Systems) Start(data Data) error {
	sys.mu.Lock()
	if err := sys.checkBootedLocked(); err != nil {
		sys.mu.Unlock()
		return err
	}
	sys.settings.Status = StatusStart
	sys.settings.Active = true
	sys.settings.Visible = true
	sys.settings.Data = data
	sys.mu.Unlock()

	sys.events.Emit(EventStart, sys)
	sys.events.Emit(EventReady, sys, data)
	return nil
}

// Create runs the behaviour's Create callback and moves the scene to
// running.
func (sys *Systems) Create() error {
	sys.mu.Lock()
	if sys.settings.Status != StatusStart {
		status := sys.settings.Status
		sys.mu.Unlock()
		return fmt.Errorf("%w: create from %s", ErrInvalidState, status)
	}
	sys.settings.Status = StatusCreating
	data := sys.settings.Data
	sys.mu.Unlock()

	sys.scene.create(data)

	sys.setStatus(StatusRunning)
	sys.events.Emit(EventCreate, sys)
	return nil
}

// Step emits preupdate and update, runs the behaviour's Update callback,
// then emits postupdate. now and delta are in milliseconds.
func (sys *Systems) Step(now, delta float64) {
	if sys.IsDestroyed() {
		return
	}
	sys.events.Emit(EventPreUpdate, sys, now, delta)
	sys.events.Emit(EventUpdate, sys, now, delta)
	sys.scene.update(now, delta)
	sys.events.Emit(EventPostUpdate, sys, now, delta)
}

// Pause stops an active scene from stepping.
func (sys *Systems) Pause(data Data) error {
	sys.mu.Lock()
	if !sys.settings.Active {
		status := sys.settings.Status
		sys.mu.Unlock()
		return fmt.Errorf("%w: pause from %s", ErrInvalidState, status)
	}
	sys.settings.Status = StatusPaused
	sys.settings.Active = false
	sys.mu.Unlock()

	sys.events.Emit(EventPause, sys, data)
	return nil
}

// Resume restarts stepping of a paused scene.
func (sys *Systems) Resume(data Data) error {
	sys.mu.Lock()
	if sys.settings.Status != StatusPaused {
		status := sys.settings.Status
		sys.mu.Unlock()
		return fmt.Errorf("%w: resume from %s", ErrInvalidState, status)
	}
	sys.settings.Status = StatusRunning
	sys.settings.Active = true
	sys.mu.Unlock()

	sys.events.Emit(EventResume, sys, data)
	return nil
}

// Sleep stops a running or paused scene from stepping and hides it.
func (sys *Systems) Sleep(data Data) error {
	sys.mu.Lock()
	status := sys.settings.Status
	if status != StatusRunning && status != StatusPaused {
		sys.mu.Unlock()
		return fmt.Errorf("%w: sleep from %s", ErrInvalidState, status)
	}
	sys.settings.Status = StatusSleeping
	sys.settings.Active = false
	sys.settings.Visible = false
	sys.mu.Unlock()

	sys.events.Emit(EventSleep, sys, data)
	return nil
}

// Wake resumes a sleeping scene.
func (sys *Systems) Wake(data Data) error {
	sys.mu.Lock()
	if sys.settings.Status != StatusSleeping {
		status := sys.settings.Status
		sys.mu.Unlock()
		return fmt.Errorf("%w: wake from %s", ErrInvalidState, status)
	}
	sys.settings.Status = StatusRunning
	sys.settings.Active = true
	sys.settings.Visible = true
	sys.mu.Unlock()

	sys.events.Emit(EventWake, sys, data)
	return nil
}

// SetActive resumes the scene when value is true and pauses it otherwise.
func (sys *Systems) SetActive(value bool, data Data) error {
	if value {
		return sys.Resume(data)
	}
	return sys.Pause(data)
}

// SetVisible toggles visibility without touching the status.
func (sys *Systems) SetVisible(value bool) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.settings.Visible = value
}

// Resize emits resize with the new viewport size.
func (sys *Systems) Resize(width, height int) {
	sys.events.Emit(EventResize, sys, width, height)
}

// Shutdown stops the scene. Plugins stay installed and the scene may be
// started again.
func (sys *Systems) Shutdown(data Data) error {
	sys.mu.Lock()
	if err := sys.checkBootedLocked(); err != nil {
		sys.mu.Unlock()
		return err
	}
	sys.settings.Status = StatusShutdown
	sys.settings.Active = false
	sys.settings.Visible = false
	sys.clearTransitionLocked()
	sys.mu.Unlock()

	sys.events.Emit(EventShutdown, sys, data)
	return nil
}

// Destroy emits destroy and tears the event source down. Calling it again
// is a no-op.
func (sys *Systems) Destroy() {
	sys.mu.Lock()
	if sys.settings.Status == StatusDestroyed {
		sys.mu.Unlock()
		return
	}
	sys.settings.Status = StatusDestroyed
	sys.settings.Active = false
	sys.settings.Visible = false
	sys.clearTransitionLocked()
	sys.mu.Unlock()

	sys.events.Emit(EventDestroy, sys)
	sys.events.Destroy()
}

// --- Transition bookkeeping (driven by Manager) ---

func (sys *Systems) markTransitionIn(from string, duration time.Duration) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.settings.IsTransition = true
	sys.settings.TransitionFrom = from
	sys.settings.TransitionDuration = duration
}

func (sys *Systems) markTransitionOut() {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.settings.TransitionOut = true
}

func (sys *Systems) endTransition() {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.clearTransitionLocked()
}

func (sys *Systems) clearTransitionLocked() {
	sys.settings.IsTransition = false
	sys.settings.TransitionFrom = ""
	sys.settings.TransitionDuration = 0
	sys.settings.TransitionOut = false
}

func (sys *Systems) setStatus(status Status) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.settings.Status = status
}

func (sys *Systems) checkBootedLocked() error {
	if sys.settings.Status == StatusDestroyed {
		return ErrDestroyed
	}
	if !sys.settings.Booted {
		return ErrNotBooted
	}
	return nil
}
