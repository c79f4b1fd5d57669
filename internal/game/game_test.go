package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/gg/gptr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/inspector"
	"github.com/kiosk404/scenekit/internal/scene"
)

type counter struct {
	mu      sync.Mutex
	updates int
	deltas  []float64
}

func (c *counter) Update(now, delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates++
	c.deltas = append(c.deltas, delta)
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

func newGame(t *testing.T, cfg *Config) *Game {
	t.Helper()
	g, err := cfg.Complete().New()
	require.NoError(t, err)
	return g
}

func TestGame_BootStepDestroy(t *testing.T) {
	behaviour := &counter{}
	g := newGame(t, &Config{
		Width:  640,
		Height: 480,
		Scenes: []scene.Config{
			{Key: "level", Active: gptr.Of(true), Behaviour: behaviour},
			{Key: "menu"},
		},
	})

	resized := 0
	level, ok := g.Scenes().Get("level")
	require.True(t, ok)
	level.Systems().Events().On(scene.EventResize, func(args ...interface{}) { resized++ })

	require.NoError(t, g.Boot(context.Background()))
	assert.ErrorIs(t, g.Boot(context.Background()), plugin.ErrAlreadyBooted)
	assert.Equal(t, 1, resized)

	g.Step(16)
	g.Step(16)
	assert.Equal(t, 2, behaviour.count())
	assert.Equal(t, []float64{16, 16}, behaviour.deltas)
	assert.Equal(t, uint64(2), g.Frames())
	assert.Equal(t, float64(2), testutil.ToFloat64(g.frameMetric))

	g.Destroy(context.Background())
	assert.True(t, level.Systems().IsDestroyed())
	assert.Equal(t, 0, g.Scenes().Len())
}

func TestGame_DuplicateScene(t *testing.T) {
	_, err := (&Config{Scenes: []scene.Config{{Key: "a"}, {Key: "a"}}}).Complete().New()
	assert.ErrorIs(t, err, scene.ErrDuplicateScene)
}

func TestGame_Resize(t *testing.T) {
	g := newGame(t, &Config{
		Width:  800,
		Height: 600,
		Scenes: []scene.Config{{Key: "level", Active: gptr.Of(true)}},
	})
	require.NoError(t, g.Boot(context.Background()))

	var sizes [][2]int
	level, _ := g.Scenes().Get("level")
	level.Systems().Events().On(scene.EventResize, func(args ...interface{}) {
		sizes = append(sizes, [2]int{args[1].(int), args[2].(int)})
	})

	g.Resize(800, 600)
	g.Resize(1024, 768)
	assert.Equal(t, [][2]int{{1024, 768}}, sizes)

	w, h := g.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
}

func TestGame_ResizeBackToPreviousSize(t *testing.T) {
	g := newGame(t, &Config{
		Width:  800,
		Height: 600,
		Scenes: []scene.Config{{Key: "level", Active: gptr.Of(true)}},
	})
	require.NoError(t, g.Boot(context.Background()))

	var ctrl inspector.Controller = g
	var sizes [][2]int
	level, _ := g.Scenes().Get("level")
	level.Systems().Events().On(scene.EventResize, func(args ...interface{}) {
		sizes = append(sizes, [2]int{args[1].(int), args[2].(int)})
	})

	ctrl.Resize(1024, 768)
	g.Resize(800, 600)
	assert.Equal(t, [][2]int{{1024, 768}, {800, 600}}, sizes)

	w, h := g.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestGame_RunStopsAtMaxFrames(t *testing.T) {
	behaviour := &counter{}
	g := newGame(t, &Config{
		FPS:       500,
		MaxFrames: 5,
		Scenes:    []scene.Config{{Key: "level", Active: gptr.Of(true), Behaviour: behaviour}},
	})
	require.NoError(t, g.Boot(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, g.Run(ctx))

	assert.Equal(t, uint64(5), g.Frames())
	assert.Equal(t, 5, behaviour.count())
	for _, d := range behaviour.deltas {
		assert.Greater(t, d, 0.0)
	}
}

func TestGame_RunStopsOnCancel(t *testing.T) {
	g := newGame(t, &Config{FPS: 200})
	require.NoError(t, g.Boot(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	require.Eventually(t, func() bool { return g.Frames() > 0 }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, g.Run(ctx), ErrAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestGame_RunRequiresBoot(t *testing.T) {
	g := newGame(t, &Config{})
	assert.ErrorIs(t, g.Run(context.Background()), ErrNotBooted)
}

func TestGame_DoSerialisesWithSteps(t *testing.T) {
	g := newGame(t, &Config{Scenes: []scene.Config{{Key: "level", Active: gptr.Of(true)}}})
	require.NoError(t, g.Boot(context.Background()))

	require.NoError(t, g.Do(func(m *scene.Manager) error {
		return m.Pause("level", nil)
	}))
	level, _ := g.Scenes().Get("level")
	assert.True(t, level.Systems().IsPaused())

	err := g.Do(func(m *scene.Manager) error { return m.Wake("nope", nil) })
	assert.ErrorIs(t, err, scene.ErrSceneNotFound)
}
