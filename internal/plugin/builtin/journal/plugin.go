package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
	"github.com/kiosk404/scenekit/internal/scene"
	"github.com/kiosk404/scenekit/pkg/logger"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "journal"

	// Kind groups this plugin under the "recorder" slot.
	Kind = "recorder"

	// Mapping exposes the journal on each scene.
	Mapping = "journal"
)

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		Key:         PluginName,
		Name:        "Scene Journal",
		Kind:        Kind,
		Mapping:     Mapping,
		Description: "Records every lifecycle notification of a scene to a journal store",
	}
}

// Journal is the per-scene instance of the journal plugin.
type Journal struct {
	*plugin.ScenePlugin

	cfg   *entity.Config
	store store.Store
}

var _ plugin.Instance = (*Journal)(nil)

// Factory is the scene plugin factory for the journal. It expects
// args["config"] (*entity.Config) and args["store"] (store.Store).
func Factory(host plugin.Host, m *plugin.Manager, args plugin.Args) (plugin.Instance, error) {
	cfgRaw, ok := args["config"]
	if !ok {
		return nil, fmt.Errorf("journal: missing 'config' in plugin args")
	}
	cfg, ok := cfgRaw.(*entity.Config)
	if !ok {
		return nil, fmt.Errorf("journal: 'config' must be *entity.Config, got %T", cfgRaw)
	}
	st, ok := args["store"].(store.Store)
	if !ok || st == nil {
		return nil, fmt.Errorf("journal: missing 'store' in plugin args")
	}
	return New(host, m, cfg, st)
}

// New attaches a journal to host.
func New(host plugin.Host, m *plugin.Manager, cfg *entity.Config, st store.Store) (*Journal, error) {
	j := &Journal{cfg: cfg, store: st}
	base, err := plugin.NewScenePlugin(host, m, j)
	if err != nil {
		return nil, err
	}
	j.ScenePlugin = base
	return j, nil
}

// Boot records the boot itself and subscribes to the other lifecycle
// notifications. Frame notifications are only recorded when configured.
func (j *Journal) Boot() {
	j.record(scene.EventBoot, nil)

	for _, event := range scene.LifecycleEvents {
		event := event
		if scene.IsFrameEvent(event) && !j.cfg.RecordFrames {
			continue
		}
		if event == scene.EventDestroy {
			j.Once(event, func(args ...interface{}) {
				j.record(event, args)
				j.Destroy()
			})
			continue
		}
		j.On(event, func(args ...interface{}) {
			j.record(event, args)
		})
	}
}

// Entries returns the recorded entries of this journal's scene.
func (j *Journal) Entries(ctx context.Context) ([]*entity.Entry, error) {
	return j.store.List(ctx, j.Systems().Key())
}

func (j *Journal) record(event string, args []interface{}) {
	sys := j.Systems()
	e := entity.NewEntry(sys.Key(), event, sys.Status().String())
	e.Data = payload(event, args)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := j.store.Append(ctx, e); err != nil {
		logger.WarnX("journal", "scene %q: failed to record %q: %v", e.Scene, event, err)
	}
}

// payload extracts the notification arguments that follow the systems
// reference into a serialisable map.
func payload(event string, args []interface{}) map[string]interface{} {
	if len(args) < 2 {
		return nil
	}
	rest := args[1:]

	switch event {
	case scene.EventResize:
		if len(rest) < 2 {
			return nil
		}
		return map[string]interface{}{"width": rest[0], "height": rest[1]}
	case scene.EventTransitionInit, scene.EventTransitionStart,
		scene.EventTransitionComplete, scene.EventTransitionOut:
		data := map[string]interface{}{"scene": rest[0]}
		if len(rest) > 1 {
			if d, ok := rest[1].(time.Duration); ok {
				data["duration_ms"] = d.Milliseconds()
			}
		}
		return data
	case scene.EventPreUpdate, scene.EventUpdate, scene.EventPostUpdate:
		if len(rest) < 2 {
			return nil
		}
		return map[string]interface{}{"time": rest[0], "delta": rest[1]}
	}

	data, ok := rest[0].(scene.Data)
	if !ok || len(data) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
