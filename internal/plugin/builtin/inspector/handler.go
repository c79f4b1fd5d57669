package inspector

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
	"github.com/kiosk404/scenekit/internal/scene"
)

// Controller gives the inspector access to the scenes. Do runs fn so that it
// does not overlap with frame stepping. Resize changes the game viewport.
type Controller interface {
	Scenes() *scene.Manager
	Do(fn func(scenes *scene.Manager) error) error
	Resize(width, height int)
}

// SceneView is the JSON view of one scene.
type SceneView struct {
	Key       string                `json:"key"`
	Settings  scene.Settings        `json:"settings"`
	Plugins   []string              `json:"plugins"`
	Mappings  []string              `json:"mappings"`
	Instances []plugin.InstanceInfo `json:"instances,omitempty"`
}

// TransitionRequest is the body of POST /transitions.
type TransitionRequest struct {
	From       string     `json:"from" binding:"required"`
	To         string     `json:"to" binding:"required"`
	DurationMs int64      `json:"duration_ms"`
	Sleep      bool       `json:"sleep"`
	Remove     bool       `json:"remove"`
	Data       scene.Data `json:"data"`
}

// ResizeRequest is the body of POST /resize.
type ResizeRequest struct {
	Width  int `json:"width" binding:"required,min=1"`
	Height int `json:"height" binding:"required,min=1"`
}

// SceneHandler serves the scene endpoints.
type SceneHandler struct {
	ctrl     Controller
	registry *plugin.Registry
	journal  store.Store
}

// NewSceneHandler creates a new SceneHandler. registry and journal may be nil.
func NewSceneHandler(ctrl Controller, registry *plugin.Registry, journal store.Store) *SceneHandler {
	return &SceneHandler{ctrl: ctrl, registry: registry, journal: journal}
}

func (h *SceneHandler) view(s *scene.Scene) SceneView {
	v := SceneView{
		Key:      s.Key(),
		Settings: s.Systems().Settings(),
		Plugins:  s.Systems().PluginKeys(),
		Mappings: s.Mappings(),
	}
	if h.registry != nil {
		v.Instances = h.registry.Instances(s.Key())
	}
	return v
}

// List handles GET /scenes.
func (h *SceneHandler) List(c *gin.Context) {
	scenes := h.ctrl.Scenes().Scenes()
	views := make([]SceneView, 0, len(scenes))
	for _, s := range scenes {
		views = append(views, h.view(s))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// Get handles GET /scenes/:key.
func (h *SceneHandler) Get(c *gin.Context) {
	key := c.Param("key")
	s, ok := h.ctrl.Scenes().Get(key)
	if !ok {
		writeError(c, http.StatusNotFound, "not_found", "scene "+key+" not found")
		return
	}
	c.JSON(http.StatusOK, h.view(s))
}

// Journal handles GET /scenes/:key/journal.
func (h *SceneHandler) Journal(c *gin.Context) {
	if h.journal == nil {
		writeError(c, http.StatusNotFound, "not_found", "journal is not enabled")
		return
	}
	entries, err := h.journal.List(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "journal_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

var sceneActions = map[string]func(m *scene.Manager, key string, data scene.Data) error{
	"start":  (*scene.Manager).Start,
	"stop":   (*scene.Manager).Stop,
	"pause":  (*scene.Manager).Pause,
	"resume": (*scene.Manager).Resume,
	"sleep":  (*scene.Manager).Sleep,
	"wake":   (*scene.Manager).Wake,
}

// Action handles POST /scenes/:key/:action. The optional JSON body is passed
// to the scene as data.
func (h *SceneHandler) Action(c *gin.Context) {
	key, name := c.Param("key"), c.Param("action")
	action, ok := sceneActions[name]
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid_request", "unknown action "+name)
		return
	}

	var data scene.Data
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&data); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	err := h.ctrl.Do(func(m *scene.Manager) error {
		return action(m, key, data)
	})
	if err != nil {
		writeSceneError(c, err)
		return
	}
	h.Get(c)
}

// Transition handles POST /transitions.
func (h *SceneHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	err := h.ctrl.Do(func(m *scene.Manager) error {
		return m.Transition(scene.TransitionConfig{
			From:     req.From,
			To:       req.To,
			Duration: time.Duration(req.DurationMs) * time.Millisecond,
			Sleep:    req.Sleep,
			Remove:   req.Remove,
			Data:     req.Data,
		})
	})
	if err != nil {
		writeSceneError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"from": req.From, "to": req.To})
}

// Resize handles POST /resize.
func (h *SceneHandler) Resize(c *gin.Context) {
	var req ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	h.ctrl.Resize(req.Width, req.Height)
	c.JSON(http.StatusOK, req)
}

// PluginHandler serves the plugin endpoints.
type PluginHandler struct {
	manager *plugin.Manager
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(manager *plugin.Manager) *PluginHandler {
	return &PluginHandler{manager: manager}
}

// List handles GET /plugins.
func (h *PluginHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.manager.Registry().Definitions()})
}

func writeError(c *gin.Context, status int, typ, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"message": msg,
			"type":    typ,
		},
	})
}

func writeSceneError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scene.ErrSceneNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, scene.ErrInvalidState),
		errors.Is(err, scene.ErrNotBooted),
		errors.Is(err, scene.ErrTransitionBusy),
		errors.Is(err, scene.ErrSelfTransition),
		errors.Is(err, scene.ErrDestroyed):
		writeError(c, http.StatusConflict, "invalid_state", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
