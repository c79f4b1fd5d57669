package inspector

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	ctrl     Controller
	manager  *plugin.Manager
	gatherer prometheus.Gatherer
	journal  store.Store
	token    string
	pprof    bool
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(bearerAuth(deps.token))
}

func installController(g *gin.Engine, deps *routerDeps) {
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var registry *plugin.Registry
	if deps.manager != nil {
		registry = deps.manager.Registry()
		pluginHandler := NewPluginHandler(deps.manager)
		g.GET("/plugins", pluginHandler.List)
	}

	sceneHandler := NewSceneHandler(deps.ctrl, registry, deps.journal)
	g.GET("/scenes", sceneHandler.List)
	g.GET("/scenes/:key", sceneHandler.Get)
	g.GET("/scenes/:key/journal", sceneHandler.Journal)
	g.POST("/scenes/:key/:action", sceneHandler.Action)
	g.POST("/transitions", sceneHandler.Transition)
	g.POST("/resize", sceneHandler.Resize)

	if deps.gatherer != nil {
		g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{})))
	}

	if deps.pprof {
		pprof.Register(g)
	}
}
