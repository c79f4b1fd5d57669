package plugin

import (
	"context"
)

// BasePlugin carries the manager back-reference and the no-op lifecycle
// every plugin starts from.
type BasePlugin struct {
	manager *Manager
}

var _ GlobalPlugin = (*BasePlugin)(nil)

// NewBasePlugin creates a base bound to manager. manager may be nil for
// plugins constructed outside a Manager.
func NewBasePlugin(manager *Manager) *BasePlugin {
	return &BasePlugin{manager: manager}
}

// Manager returns the plugin manager that created the plugin.
func (p *BasePlugin) Manager() *Manager { return p.manager }

func (p *BasePlugin) Init(data interface{}) error     { return nil }
func (p *BasePlugin) Start(ctx context.Context) error { return nil }
func (p *BasePlugin) Stop(ctx context.Context) error  { return nil }
func (p *BasePlugin) Destroy()                        {}
