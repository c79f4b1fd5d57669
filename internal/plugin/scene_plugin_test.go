package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scenekit/internal/scene"
)

// fakeHost exposes a systems registry the way a host scene does, without
// being a *scene.Scene itself.
type fakeHost struct {
	sys *scene.Systems
}

func (h *fakeHost) Systems() *scene.Systems { return h.sys }

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	s, err := scene.New(scene.Config{Key: "fake"})
	require.NoError(t, err)
	return &fakeHost{sys: s.Systems()}
}

// countingPlugin overrides the boot hook and optionally subscribes to more
// lifecycle notifications from inside it.
type countingPlugin struct {
	*ScenePlugin

	boots     int
	starts    int
	shutdowns int
	sawRefs   bool
	subscribe bool
}

func newCountingPlugin(t *testing.T, host Host, subscribe bool) *countingPlugin {
	t.Helper()
	p := &countingPlugin{subscribe: subscribe}
	base, err := NewScenePlugin(host, nil, p)
	require.NoError(t, err)
	p.ScenePlugin = base
	return p
}

func (p *countingPlugin) Boot() {
	p.boots++
	p.sawRefs = p.Scene() != nil && p.Systems() != nil
	if !p.subscribe {
		return
	}
	p.On(scene.EventStart, func(args ...interface{}) { p.starts++ })
	p.On(scene.EventShutdown, func(args ...interface{}) { p.shutdowns++ })
}

func TestNewScenePlugin_CapturesReferences(t *testing.T) {
	host := newFakeHost(t)
	p, err := NewScenePlugin(host, nil, nil)
	require.NoError(t, err)

	assert.Same(t, host, p.Scene())
	assert.Same(t, host.sys, p.Systems())
	assert.Same(t, host.sys.Events(), p.Events())
	assert.False(t, p.Booted())
	assert.Nil(t, p.Manager())
}

func TestNewScenePlugin_WithRealScene(t *testing.T) {
	s, err := scene.New(scene.Config{Key: "level"})
	require.NoError(t, err)
	m := (&Config{}).Complete().New()

	p, err := NewScenePlugin(s, m, nil)
	require.NoError(t, err)
	assert.Same(t, s, p.Scene())
	assert.Same(t, s.Systems(), p.Systems())
	assert.Same(t, m, p.Manager())
}

func TestNewScenePlugin_Validation(t *testing.T) {
	_, err := NewScenePlugin(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilHost)

	_, err = NewScenePlugin(&fakeHost{}, nil, nil)
	assert.ErrorIs(t, err, ErrNilSystems)

	_, err = NewScenePlugin(&fakeHost{sys: &scene.Systems{}}, nil, nil)
	assert.ErrorIs(t, err, ErrNilEvents)
}

func TestScenePlugin_SubscribesOnceToBoot(t *testing.T) {
	host := newFakeHost(t)
	events := host.sys.Events()

	_, err := NewScenePlugin(host, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, events.ListenerCount(scene.EventBoot))
	assert.Equal(t, []string{scene.EventBoot}, events.EventNames())
}

func TestScenePlugin_BootHookRunsOnce(t *testing.T) {
	host := newFakeHost(t)
	p := newCountingPlugin(t, host, false)
	events := host.sys.Events()

	events.Emit(scene.EventBoot)
	assert.Equal(t, 1, p.boots)
	assert.True(t, p.Booted())
	assert.True(t, p.sawRefs)

	events.Emit(scene.EventBoot)
	assert.Equal(t, 1, p.boots)
}

func TestScenePlugin_DefaultBootHasNoSideEffects(t *testing.T) {
	host := newFakeHost(t)
	events := host.sys.Events()
	before := host.sys.Settings()

	p, err := NewScenePlugin(host, nil, nil)
	require.NoError(t, err)
	events.Emit(scene.EventBoot)

	assert.True(t, p.Booted())
	assert.Empty(t, events.EventNames())
	assert.Empty(t, host.sys.PluginKeys())
	assert.Equal(t, before, host.sys.Settings())
	assert.Same(t, host, p.Scene())
	assert.Same(t, host.sys, p.Systems())
}

func TestScenePlugin_ShutdownSubscribedInBoot(t *testing.T) {
	host := newFakeHost(t)
	p := newCountingPlugin(t, host, true)
	events := host.sys.Events()

	events.Emit(scene.EventBoot)
	events.Emit(scene.EventShutdown)
	assert.Equal(t, 1, p.shutdowns)
}

func TestScenePlugin_StartBeforeBootIsMissed(t *testing.T) {
	host := newFakeHost(t)
	p := newCountingPlugin(t, host, true)
	events := host.sys.Events()

	events.Emit(scene.EventStart)
	assert.Equal(t, 0, p.starts)

	events.Emit(scene.EventBoot)
	events.Emit(scene.EventStart)
	assert.Equal(t, 1, p.starts)
}

func TestScenePlugin_DestroyBeforeBoot(t *testing.T) {
	host := newFakeHost(t)
	p := newCountingPlugin(t, host, true)

	p.Destroy()
	assert.Equal(t, 0, host.sys.Events().ListenerCount(scene.EventBoot))

	host.sys.Events().Emit(scene.EventBoot)
	assert.Equal(t, 0, p.boots)
	assert.False(t, p.Booted())
}

func TestScenePlugin_DestroyedDuringBootEmit(t *testing.T) {
	host := newFakeHost(t)
	events := host.sys.Events()

	var p *countingPlugin
	events.Once(scene.EventBoot, func(args ...interface{}) { p.Destroy() })
	p = newCountingPlugin(t, host, true)

	events.Emit(scene.EventBoot)
	assert.Equal(t, 0, p.boots)
	assert.False(t, p.Booted())
	assert.Equal(t, 0, events.ListenerCount(scene.EventStart))
}

func TestScenePlugin_DestroyReleasesSubscriptions(t *testing.T) {
	host := newFakeHost(t)
	p := newCountingPlugin(t, host, true)
	events := host.sys.Events()

	events.Emit(scene.EventBoot)
	assert.Equal(t, 1, events.ListenerCount(scene.EventStart))

	p.Destroy()
	assert.Empty(t, events.EventNames())
	events.Emit(scene.EventStart)
	assert.Equal(t, 0, p.starts)
	assert.Same(t, host, p.Scene())
}

func TestScenePlugin_HostBootSequence(t *testing.T) {
	s, err := scene.New(scene.Config{Key: "level"})
	require.NoError(t, err)
	p := newCountingPlugin(t, s, true)

	require.NoError(t, s.Systems().Init(nil))
	require.NoError(t, s.Systems().Start(nil))
	require.NoError(t, s.Systems().Shutdown(nil))

	assert.Equal(t, 1, p.boots)
	assert.Equal(t, 1, p.starts)
	assert.Equal(t, 1, p.shutdowns)
}
