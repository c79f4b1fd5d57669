package plugin

import (
	"sync"
	"sync/atomic"

	"github.com/kiosk404/scenekit/internal/scene"
	"github.com/kiosk404/scenekit/pkg/events"
)

// ScenePlugin is the base of every plugin attached to a single scene.
//
// On construction it captures the host and the host's systems and subscribes
// a one-shot handler to the scene's boot notification. When boot fires the
// plugin becomes booted and its Booter runs. That hook is the place to
// subscribe to the other lifecycle notifications (see scene.LifecycleEvents);
// at the very least a plugin should listen for destroy and release whatever it
// allocated there.
//
// A concrete plugin embeds *ScenePlugin, implements Boot and passes itself as
// the booter:
//
//	type Tracker struct {
//	    *plugin.ScenePlugin
//	    frames int
//	}
//
//	func NewTracker(host plugin.Host, m *plugin.Manager) (*Tracker, error) {
//	    t := &Tracker{}
//	    base, err := plugin.NewScenePlugin(host, m, t)
//	    if err != nil {
//	        return nil, err
//	    }
//	    t.ScenePlugin = base
//	    return t, nil
//	}
//
//	func (t *Tracker) Boot() {
//	    t.On(scene.EventUpdate, func(args ...interface{}) { t.frames++ })
//	    t.Once(scene.EventDestroy, func(args ...interface{}) { t.Destroy() })
//	}
type ScenePlugin struct {
	*BasePlugin

	scene   Host
	systems *scene.Systems
	booted  atomic.Bool
	// destroyed stops a boot already being delivered from reaching the hook.
	destroyed atomic.Bool

	mu      sync.Mutex
	bootSub events.Subscription
	subs    []events.Subscription
}

var _ Instance = (*ScenePlugin)(nil)

// NewScenePlugin attaches a plugin base to host. booter is the boot hook;
// nil selects the no-op Boot of the base itself.
func NewScenePlugin(host Host, manager *Manager, booter Booter) (*ScenePlugin, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	sys := host.Systems()
	if sys == nil {
		return nil, ErrNilSystems
	}
	emitter := sys.Events()
	if emitter == nil {
		return nil, ErrNilEvents
	}

	p := &ScenePlugin{
		BasePlugin: NewBasePlugin(manager),
		scene:      host,
		systems:    sys,
	}
	if booter == nil {
		booter = p
	}

	p.bootSub = emitter.Once(scene.EventBoot, func(args ...interface{}) {
		if p.destroyed.Load() || !p.booted.CompareAndSwap(false, true) {
			return
		}
		booter.Boot()
	})
	return p, nil
}

// Scene returns the host the plugin was attached to.
func (p *ScenePlugin) Scene() Host { return p.scene }

// Systems returns the host's systems registry.
func (p *ScenePlugin) Systems() *scene.Systems { return p.systems }

// Events returns the scene's lifecycle event source.
func (p *ScenePlugin) Events() *events.Emitter { return p.systems.Events() }

// Booted reports whether the boot hook has run.
func (p *ScenePlugin) Booted() bool { return p.booted.Load() }

// Boot is the default boot hook and does nothing.
func (p *ScenePlugin) Boot() {}

// On subscribes fn to a scene notification and tracks the subscription so
// Destroy can release it.
func (p *ScenePlugin) On(event string, fn events.Listener) events.Subscription {
	return p.track(p.Events().On(event, fn))
}

// Once is On for a single delivery.
func (p *ScenePlugin) Once(event string, fn events.Listener) events.Subscription {
	return p.track(p.Events().Once(event, fn))
}

func (p *ScenePlugin) track(sub events.Subscription) events.Subscription {
	if !sub.Valid() {
		return sub
	}
	p.mu.Lock()
	p.subs = append(p.subs, sub)
	p.mu.Unlock()
	return sub
}

// Destroy drops every subscription made through On and Once, and the boot
// subscription if boot has not fired yet. A plugin destroyed before boot never
// boots, even when the boot notification is already being delivered. The
// scene and systems references are kept.
func (p *ScenePlugin) Destroy() {
	p.destroyed.Store(true)

	p.mu.Lock()
	subs := p.subs
	p.subs = nil
	p.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if !p.Booted() {
		p.bootSub.Unsubscribe()
	}
}
