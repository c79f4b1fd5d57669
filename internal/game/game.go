package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/scene"
	"github.com/kiosk404/scenekit/pkg/logger"
)

var (
	// ErrAlreadyRunning is returned by Run while another Run is in progress.
	ErrAlreadyRunning = errors.New("game loop is already running")
	// ErrNotBooted is returned by Run before Boot.
	ErrNotBooted = errors.New("game is not booted")
)

// Config holds the configuration for creating a Game.
// Follows the Config → Complete() → New() pattern.
type Config struct {
	// FPS is the target step rate of Run.
	FPS int
	// MaxFrames stops Run after this many steps. 0 runs until the context
	// ends.
	MaxFrames int
	// Width and Height are the initial viewport size.
	Width  int
	Height int

	// Scenes are added in order.
	Scenes []scene.Config
	// SlotConfig controls which scene plugin is installed per slot kind.
	SlotConfig plugin.SlotConfig
	// Metrics is the Prometheus registry the game and its plugins report to.
	Metrics *prometheus.Registry
}

// CompletedConfig is the validated and completed game configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills in defaults for the game configuration.
func (c *Config) Complete() CompletedConfig {
	if c.FPS <= 0 {
		c.FPS = 60
	}
	if c.Metrics == nil {
		c.Metrics = prometheus.NewRegistry()
	}
	return CompletedConfig{c}
}

// New creates a Game with its plugin and scene managers and adds the
// configured scenes.
func (c CompletedConfig) New() (*Game, error) {
	frames := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scenekit",
		Subsystem: "game",
		Name:      "frames_total",
		Help:      "Number of frames stepped by the game loop.",
	})
	if err := c.Metrics.Register(frames); err != nil {
		return nil, fmt.Errorf("register game metrics: %w", err)
	}

	g := &Game{
		cfg:         c.Config,
		plugins:     (&plugin.Config{SlotConfig: c.SlotConfig}).Complete().New(),
		scenes:      scene.NewManager(),
		metrics:     c.Metrics,
		frameMetric: frames,
		width:       c.Width,
		height:      c.Height,
	}
	for _, sc := range c.Scenes {
		if _, err := g.scenes.Add(sc); err != nil {
			return nil, fmt.Errorf("add scene %q: %w", sc.Key, err)
		}
	}
	return g, nil
}

// Game ties the plugin manager and the scene manager to a fixed-rate loop.
//
// Every scene mutation goes through the loop lock: Step holds it while
// stepping and Do holds it while running a command, so commands issued from
// other goroutines (the inspector) never interleave with a frame.
type Game struct {
	cfg         *Config
	plugins     *plugin.Manager
	scenes      *scene.Manager
	metrics     *prometheus.Registry
	frameMetric prometheus.Counter

	mu      sync.Mutex
	booted  bool
	running bool
	frames  uint64
	now     float64
	width   int
	height  int
}

// Plugins returns the plugin manager.
func (g *Game) Plugins() *plugin.Manager { return g.plugins }

// Scenes returns the scene manager.
func (g *Game) Scenes() *scene.Manager { return g.scenes }

// Metrics returns the Prometheus registry.
func (g *Game) Metrics() *prometheus.Registry { return g.metrics }

// Install applies a set of plugin definitions to the plugin manager.
func (g *Game) Install(reg *plugin.InTreeRegistry) error {
	if err := reg.ApplyTo(g.plugins); err != nil {
		return fmt.Errorf("failed to register in-tree plugins: %w", err)
	}
	return nil
}

// Boot boots the global plugins, then every scene, then sends the initial
// viewport size.
func (g *Game) Boot(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.booted {
		return plugin.ErrAlreadyBooted
	}

	if err := g.plugins.Boot(ctx); err != nil {
		return fmt.Errorf("failed to boot plugins: %w", err)
	}
	if err := g.scenes.Boot(g.plugins); err != nil {
		return fmt.Errorf("failed to boot scenes: %w", err)
	}
	g.booted = true

	if g.width > 0 && g.height > 0 {
		g.scenes.Resize(g.width, g.height)
	}
	logger.Info("[Game] booted %d scenes with %d plugins", g.scenes.Len(), g.plugins.Registry().Len())
	return nil
}

// Step advances the clock by delta milliseconds and steps every running
// scene.
func (g *Game) Step(delta float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stepLocked(delta)
}

func (g *Game) stepLocked(delta float64) {
	g.now += delta
	g.frames++
	g.scenes.Update(g.now, delta)
	g.frameMetric.Inc()
}

// Do runs fn against the scene manager between frames.
func (g *Game) Do(fn func(scenes *scene.Manager) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.scenes)
}

// Resize records the viewport size and forwards it to every booted scene
// when it changed.
func (g *Game) Resize(width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if width == g.width && height == g.height {
		return
	}
	g.width, g.height = width, height
	if g.booted {
		g.scenes.Resize(width, height)
	}
	logger.Info("[Game] viewport resized to %dx%d", width, height)
}

// Size returns the current viewport size.
func (g *Game) Size() (width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.height
}

// Frames returns the number of frames stepped so far.
func (g *Game) Frames() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames
}

// Run steps the game at the configured FPS until ctx ends or MaxFrames is
// reached. The delta passed to scenes is the measured wall time since the
// previous frame.
func (g *Game) Run(ctx context.Context) error {
	g.mu.Lock()
	if !g.booted {
		g.mu.Unlock()
		return ErrNotBooted
	}
	if g.running {
		g.mu.Unlock()
		return ErrAlreadyRunning
	}
	g.running = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.running = false
		g.mu.Unlock()
	}()

	interval := time.Second / time.Duration(g.cfg.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("[Game] loop started at %d fps", g.cfg.FPS)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Info("[Game] loop stopped after %d frames", g.Frames())
			return nil
		case tick := <-ticker.C:
			delta := float64(tick.Sub(last)) / float64(time.Millisecond)
			last = tick

			g.mu.Lock()
			g.stepLocked(delta)
			done := g.cfg.MaxFrames > 0 && g.frames >= uint64(g.cfg.MaxFrames)
			g.mu.Unlock()

			if done {
				logger.Info("[Game] reached %d frames", g.cfg.MaxFrames)
				return nil
			}
		}
	}
}

// Destroy destroys every scene, most recent first, then stops and destroys
// the global plugins. The loop lock is released before the plugins stop so
// in-flight inspector requests can drain.
func (g *Game) Destroy(ctx context.Context) {
	g.mu.Lock()
	g.scenes.Destroy()
	g.booted = false
	frames := g.frames
	g.mu.Unlock()

	g.plugins.Destroy(ctx)
	logger.Info("[Game] destroyed after %d frames", frames)
}
