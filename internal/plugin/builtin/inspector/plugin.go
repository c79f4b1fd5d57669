package inspector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store"
	"github.com/kiosk404/scenekit/pkg/logger"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "inspector"
)

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		Key:         PluginName,
		Name:        "Inspector",
		Description: "HTTP API to list and drive scenes, list plugins and scrape metrics",
	}
}

// Inspector is a global plugin serving the inspection API while active.
type Inspector struct {
	*plugin.BasePlugin

	cfg    *Config
	deps   *routerDeps
	engine *gin.Engine

	mu     sync.Mutex
	server *http.Server
	addr   string
}

var _ plugin.GlobalPlugin = (*Inspector)(nil)

// Factory is the global plugin factory for the inspector. It expects
// args["config"] (*Config) and args["controller"] (Controller), and
// optionally args["gatherer"] (prometheus.Gatherer) and args["journal"]
// (store.Store).
func Factory(m *plugin.Manager, args plugin.Args) (plugin.GlobalPlugin, error) {
	cfgRaw, ok := args["config"]
	if !ok {
		return nil, fmt.Errorf("inspector: missing 'config' in plugin args")
	}
	cfg, ok := cfgRaw.(*Config)
	if !ok {
		return nil, fmt.Errorf("inspector: 'config' must be *inspector.Config, got %T", cfgRaw)
	}
	ctrl, ok := args["controller"].(Controller)
	if !ok || ctrl == nil {
		return nil, fmt.Errorf("inspector: missing 'controller' in plugin args")
	}
	deps := &routerDeps{ctrl: ctrl, manager: m, token: cfg.Token, pprof: cfg.Pprof}
	if g, ok := args["gatherer"].(prometheus.Gatherer); ok {
		deps.gatherer = g
	}
	if j, ok := args["journal"].(store.Store); ok {
		deps.journal = j
	}
	return &Inspector{
		BasePlugin: plugin.NewBasePlugin(m),
		cfg:        cfg,
		deps:       deps,
	}, nil
}

// Init builds the router.
func (p *Inspector) Init(_ interface{}) error {
	gin.SetMode(gin.ReleaseMode)
	p.engine = gin.New()
	initRouter(p.engine, p.deps)
	return nil
}

// Handler returns the HTTP handler of the API.
func (p *Inspector) Handler() http.Handler {
	return p.engine
}

// Start listens on the configured address and serves in the background.
func (p *Inspector) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", p.cfg.Addr)
	if err != nil {
		return fmt.Errorf("inspector: listen on %s: %w", p.cfg.Addr, err)
	}
	srv := &http.Server{Handler: p.engine}

	p.mu.Lock()
	p.server = srv
	p.addr = ln.Addr().String()
	p.mu.Unlock()

	logger.InfoX("inspector", "serving on http://%s", ln.Addr())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorX("inspector", "server stopped: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (p *Inspector) Stop(ctx context.Context) error {
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.addr = ""
	p.mu.Unlock()
	if srv == nil {
		return nil
	}

	if p.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ShutdownTimeout)
		defer cancel()
	}
	logger.InfoX("inspector", "shutting down")
	return srv.Shutdown(ctx)
}

// Addr returns the bound address while serving, empty otherwise.
func (p *Inspector) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}
