package builtin

import (
	"testing"
	"time"

	"github.com/bytedance/gg/gptr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scenekit/internal/game"
	genericoptions "github.com/kiosk404/scenekit/internal/pkg/options"
	"github.com/kiosk404/scenekit/internal/plugin"
	journalentity "github.com/kiosk404/scenekit/internal/plugin/builtin/journal/entity"
)

func applied(t *testing.T, opts *genericoptions.PluginsOptions, deps Deps) *plugin.Manager {
	t.Helper()
	reg, err := NewInTreeRegistry(opts, deps)
	require.NoError(t, err)
	m := (&plugin.Config{}).Complete().New()
	require.NoError(t, reg.ApplyTo(m))
	return m
}

func TestNewInTreeRegistry_Defaults(t *testing.T) {
	m := applied(t, nil, Deps{})

	assert.True(t, m.Registry().Has("journal"))
	assert.True(t, m.Registry().Has("framestats"))
	assert.False(t, m.Registry().Has("inspector"))
}

func TestNewInTreeRegistry_InspectorNeedsController(t *testing.T) {
	g, err := (&game.Config{}).Complete().New()
	require.NoError(t, err)

	m := applied(t, genericoptions.NewPluginsOptions(), Deps{Controller: g, Metrics: g.Metrics()})

	require.True(t, m.Registry().Has("inspector"))
	infos := m.Registry().Definitions()
	require.NotEmpty(t, infos)
	assert.Equal(t, "inspector", infos[0].Key)
	assert.Equal(t, plugin.ScopeGlobal, infos[0].Scope)
}

func TestNewInTreeRegistry_Disabled(t *testing.T) {
	opts := genericoptions.NewPluginsOptions()
	opts.Enabled = false

	reg, err := NewInTreeRegistry(opts, Deps{})
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestNewInTreeRegistry_DenyAndEntryDisable(t *testing.T) {
	opts := genericoptions.NewPluginsOptions()
	opts.Deny = []string{"journal"}
	opts.Entries["framestats"] = genericoptions.PluginEntryConfig{Enabled: gptr.Of(false)}

	reg, err := NewInTreeRegistry(opts, Deps{})
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestNewInTreeRegistry_SharedMetricsRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewInTreeRegistry(nil, Deps{Metrics: reg})
	require.NoError(t, err)
	// Registering twice reuses the collectors already registered.
	_, err = NewInTreeRegistry(nil, Deps{Metrics: reg})
	require.NoError(t, err)
}

func TestResolveJournalConfig(t *testing.T) {
	cfg := ResolveJournalConfig(nil)
	assert.Equal(t, journalentity.DefaultConfig(), cfg)

	opts := genericoptions.NewPluginsOptions()
	opts.Entries["journal"] = genericoptions.PluginEntryConfig{
		Config: map[string]interface{}{
			"driver":        "boltdb",
			"path":          "/tmp/journal.db",
			"record_frames": true,
		},
	}
	cfg = ResolveJournalConfig(opts)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, journalentity.DriverBoltDB, cfg.Store.Driver)
	assert.Equal(t, "/tmp/journal.db", cfg.Store.Path)
	assert.True(t, cfg.RecordFrames)

	opts.Deny = []string{"journal"}
	assert.False(t, ResolveJournalConfig(opts).Enabled)
}

func TestResolveInspectorConfig(t *testing.T) {
	opts := genericoptions.NewPluginsOptions()
	opts.Entries["inspector"] = genericoptions.PluginEntryConfig{
		Config: map[string]interface{}{
			"addr":             "127.0.0.1:9999",
			"token":            "secret",
			"shutdown_timeout": "2s",
			"pprof":            true,
		},
	}
	cfg := resolveInspectorConfig(opts)
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.Pprof)

	opts.Entries["inspector"] = genericoptions.PluginEntryConfig{
		Config: map[string]interface{}{"shutdown_timeout": "soon"},
	}
	cfg = resolveInspectorConfig(opts)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}
