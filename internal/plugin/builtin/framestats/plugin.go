package framestats

import (
	"fmt"
	"sync"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/scene"
	"github.com/kiosk404/scenekit/pkg/logger"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "framestats"

	// Kind groups this plugin under the "stats" slot.
	Kind = "stats"

	// Mapping exposes the stats on each scene.
	Mapping = "stats"
)

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		Key:         PluginName,
		Name:        "Frame Stats",
		Kind:        Kind,
		Mapping:     Mapping,
		Description: "Counts frames and frame time per scene and exports them as Prometheus metrics",
	}
}

// Snapshot is a point-in-time view of a scene's frame counters.
type Snapshot struct {
	Scene   string  `json:"scene"`
	Frames  uint64  `json:"frames"`
	TotalMs float64 `json:"total_ms"`
	LastMs  float64 `json:"last_ms"`
	// Events counts non-frame lifecycle notifications by name.
	Events map[string]uint64 `json:"events,omitempty"`
}

// AverageMs is the mean frame delta.
func (s Snapshot) AverageMs() float64 {
	if s.Frames == 0 {
		return 0
	}
	return s.TotalMs / float64(s.Frames)
}

// Stats is the per-scene instance of the framestats plugin.
type Stats struct {
	*plugin.ScenePlugin

	metrics *Metrics

	mu       sync.Mutex
	snapshot Snapshot
	inFrame  bool
}

var _ plugin.Instance = (*Stats)(nil)

// Factory is the scene plugin factory for framestats. It expects
// args["metrics"] (*Metrics).
func Factory(host plugin.Host, m *plugin.Manager, args plugin.Args) (plugin.Instance, error) {
	metrics, ok := args["metrics"].(*Metrics)
	if !ok || metrics == nil {
		return nil, fmt.Errorf("framestats: missing 'metrics' in plugin args")
	}
	return New(host, m, metrics)
}

// New attaches frame stats to host.
func New(host plugin.Host, m *plugin.Manager, metrics *Metrics) (*Stats, error) {
	s := &Stats{metrics: metrics}
	base, err := plugin.NewScenePlugin(host, m, s)
	if err != nil {
		return nil, err
	}
	s.ScenePlugin = base
	s.snapshot.Scene = base.Systems().Key()
	return s, nil
}

func (s *Stats) Boot() {
	key := s.snapshot.Scene

	s.On(scene.EventPreUpdate, func(args ...interface{}) {
		s.mu.Lock()
		s.inFrame = true
		s.mu.Unlock()
	})
	s.On(scene.EventUpdate, func(args ...interface{}) {
		delta, _ := frameDelta(args)
		s.mu.Lock()
		s.snapshot.LastMs = delta
		s.mu.Unlock()
	})
	s.On(scene.EventPostUpdate, func(args ...interface{}) {
		s.mu.Lock()
		if !s.inFrame {
			s.mu.Unlock()
			return
		}
		s.inFrame = false
		s.snapshot.Frames++
		s.snapshot.TotalMs += s.snapshot.LastMs
		delta := s.snapshot.LastMs
		s.mu.Unlock()

		s.metrics.Frames.WithLabelValues(key).Inc()
		s.metrics.Delta.WithLabelValues(key).Observe(delta)
	})

	for _, event := range []string{scene.EventPause, scene.EventResume, scene.EventSleep, scene.EventWake, scene.EventShutdown} {
		event := event
		s.On(event, func(args ...interface{}) {
			s.mu.Lock()
			if s.snapshot.Events == nil {
				s.snapshot.Events = make(map[string]uint64)
			}
			s.snapshot.Events[event]++
			s.mu.Unlock()
			s.metrics.Lifecycle.WithLabelValues(key, event).Inc()
		})
	}

	s.Once(scene.EventDestroy, func(args ...interface{}) {
		snap := s.Snapshot()
		logger.DebugX("framestats", "scene %q: %d frames, avg %.2fms", key, snap.Frames, snap.AverageMs())
		s.metrics.forget(key)
		s.Destroy()
	})
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot
	if s.snapshot.Events != nil {
		snap.Events = make(map[string]uint64, len(s.snapshot.Events))
		for k, v := range s.snapshot.Events {
			snap.Events[k] = v
		}
	}
	return snap
}

func frameDelta(args []interface{}) (float64, bool) {
	if len(args) < 3 {
		return 0, false
	}
	delta, ok := args[2].(float64)
	return delta, ok
}
