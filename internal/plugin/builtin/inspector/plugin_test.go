package inspector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/gg/gptr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store/inmemory"
	"github.com/kiosk404/scenekit/internal/scene"
	"github.com/kiosk404/scenekit/pkg/utils/json"
)

type testController struct {
	mu     sync.Mutex
	scenes *scene.Manager
	width  int
	height int
}

func (c *testController) Scenes() *scene.Manager { return c.scenes }

func (c *testController) Do(fn func(*scene.Manager) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.scenes)
}

func (c *testController) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.scenes.Resize(width, height)
}

type fixture struct {
	ctrl      *testController
	inspector *Inspector
	manager   *plugin.Manager
	scenes    *scene.Manager
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "scenekit_test_total", Help: "test"}))

	scenes := scene.NewManager()
	ctrl := &testController{scenes: scenes}
	st := inmemory.NewEntryStore()
	m := (&plugin.Config{}).Complete().New()
	require.NoError(t, m.InstallGlobal(plugin.GlobalDefinition{
		Definition: PluginDefinition(),
		Args: plugin.Args{
			"config":     cfg,
			"controller": ctrl,
			"gatherer":   reg,
			"journal":    st,
		},
		Factory: Factory,
	}))
	require.NoError(t, m.InstallScenePlugin(plugin.SceneDefinition{
		Definition: journal.PluginDefinition(),
		Args:       plugin.Args{"config": entity.DefaultConfig(), "store": st},
		Factory:    journal.Factory,
	}))
	require.NoError(t, m.Boot(context.Background()))

	_, err := scenes.Add(scene.Config{Key: "menu", Active: gptr.Of(true)})
	require.NoError(t, err)
	_, err = scenes.Add(scene.Config{Key: "level"})
	require.NoError(t, err)
	require.NoError(t, scenes.Boot(m))

	g, ok := m.GetGlobal(PluginName)
	require.True(t, ok)
	return &fixture{ctrl: ctrl, inspector: g.(*Inspector), manager: m, scenes: scenes}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.inspector.Handler().ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestInspector_Healthz(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	w, body := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestInspector_ListScenes(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	w, body := f.do(t, http.MethodGet, "/scenes", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	menu := data[0].(map[string]interface{})
	assert.Equal(t, "menu", menu["key"])
	settings := menu["settings"].(map[string]interface{})
	assert.Equal(t, scene.StatusRunning.String(), settings["status"])
	assert.Equal(t, []interface{}{journal.PluginName}, menu["plugins"])
}

func TestInspector_GetScene(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	w, body := f.do(t, http.MethodGet, "/scenes/level", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "level", body["key"])
	instances := body["instances"].([]interface{})
	require.Len(t, instances, 1)
	assert.Equal(t, journal.PluginName, instances[0].(map[string]interface{})["key"])

	w, _ = f.do(t, http.MethodGet, "/scenes/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInspector_SceneActions(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	menu, ok := f.scenes.Get("menu")
	require.True(t, ok)

	w, _ := f.do(t, http.MethodPost, "/scenes/menu/pause", `{"reason":"inspect"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, menu.Systems().IsPaused())

	w, _ = f.do(t, http.MethodPost, "/scenes/menu/pause", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(t, http.MethodPost, "/scenes/menu/resume", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, scene.StatusRunning, menu.Systems().Status())

	w, _ = f.do(t, http.MethodPost, "/scenes/menu/explode", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/scenes/nope/pause", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodPost, "/scenes/menu/pause", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInspector_Transition(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	w, _ := f.do(t, http.MethodPost, "/transitions", `{"from":"menu","to":"level","sleep":true}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	menu, _ := f.scenes.Get("menu")
	level, _ := f.scenes.Get("level")
	assert.True(t, menu.Systems().IsSleeping())
	assert.Equal(t, scene.StatusRunning, level.Systems().Status())

	w, _ = f.do(t, http.MethodPost, "/transitions", `{"from":"level","to":"level"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(t, http.MethodPost, "/transitions", `{"from":"level"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInspector_Resize(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	menu, _ := f.scenes.Get("menu")
	var got []interface{}
	menu.Systems().Events().On(scene.EventResize, func(args ...interface{}) { got = args[1:] })

	w, _ := f.do(t, http.MethodPost, "/resize", `{"width":1024,"height":768}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{1024, 768}, got)
	assert.Equal(t, 1024, f.ctrl.width)
	assert.Equal(t, 768, f.ctrl.height)

	w, _ = f.do(t, http.MethodPost, "/resize", `{"width":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInspector_Journal(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	w, body := f.do(t, http.MethodGet, "/scenes/menu/journal", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].([]interface{})
	require.NotEmpty(t, data)
	assert.Equal(t, scene.EventBoot, data[0].(map[string]interface{})["event"])
}

func TestInspector_Plugins(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	w, body := f.do(t, http.MethodGet, "/plugins", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, PluginName, first["key"])
	assert.Equal(t, string(plugin.ScopeGlobal), first["scope"])
}

func TestInspector_Metrics(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	w, _ := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scenekit_test_total")
}

func TestInspector_Pprof(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	w, _ := f.do(t, http.MethodGet, "/debug/pprof/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	cfg := DefaultConfig()
	cfg.Pprof = true
	f = newFixture(t, cfg)
	w, _ = f.do(t, http.MethodGet, "/debug/pprof/", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInspector_BearerAuth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token = "secret"
	f := newFixture(t, cfg)

	w, _ := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodGet, "/scenes", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/scenes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	f.inspector.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	f.inspector.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInspector_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	f := newFixture(t, cfg)
	ctx := context.Background()

	require.NoError(t, f.manager.StartPlugin(ctx, PluginName))
	addr := f.inspector.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, f.manager.StopPlugin(ctx, PluginName))
	assert.Empty(t, f.inspector.Addr())
	f.manager.Destroy(ctx)
}

func TestFactory_Args(t *testing.T) {
	_, err := Factory(nil, plugin.Args{})
	assert.Error(t, err)
	_, err = Factory(nil, plugin.Args{"config": DefaultConfig()})
	assert.Error(t, err)
}
