package scenehost

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/gg/gptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	genericoptions "github.com/kiosk404/scenekit/internal/pkg/options"
	"github.com/kiosk404/scenekit/internal/plugin/builtin/journal/store/boltdb"
	"github.com/kiosk404/scenekit/internal/scenehost/config"
	"github.com/kiosk404/scenekit/internal/scenehost/options"
)

func testConfig(t *testing.T, journalPath string) *config.Config {
	t.Helper()
	opts := options.NewOptions()
	opts.GameOptions.FPS = 500
	opts.GameOptions.MaxFrames = 5
	opts.GameOptions.Scenes = []genericoptions.SceneOptions{
		{Key: "level", Active: gptr.Of(true)},
		{Key: "menu"},
	}
	opts.PluginOptions.Deny = []string{"inspector"}
	if journalPath != "" {
		opts.PluginOptions.Entries["journal"] = genericoptions.PluginEntryConfig{
			Config: map[string]interface{}{"driver": "boltdb", "path": journalPath},
		}
	}
	cfg, err := config.CreateConfigFromOptions(opts)
	require.NoError(t, err)
	return cfg
}

func TestBuild_InstallsBuiltins(t *testing.T) {
	g, closeFn, err := Build(testConfig(t, ""))
	require.NoError(t, err)
	defer closeFn()

	reg := g.Plugins().Registry()
	assert.True(t, reg.Has("journal"))
	assert.True(t, reg.Has("framestats"))
	assert.False(t, reg.Has("inspector"))

	require.NoError(t, g.Boot(context.Background()))
	defer g.Destroy(context.Background())

	level, ok := g.Scenes().Get("level")
	require.True(t, ok)
	_, ok = level.Plugin("journal")
	assert.True(t, ok)
	_, ok = level.Plugin("stats")
	assert.True(t, ok)
}

func TestRun_JournalPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, Run(ctx, testConfig(t, path), nil))

	db, err := boltdb.Open(path)
	require.NoError(t, err)
	st := boltdb.NewEntryStore(db)
	defer st.Close()

	entries, err := st.List(context.Background(), "level")
	require.NoError(t, err)
	var events []string
	for _, e := range entries {
		events = append(events, e.Event)
	}
	assert.Contains(t, events, "boot")
	assert.Contains(t, events, "start")
	assert.Contains(t, events, "resize")
	assert.Contains(t, events, "destroy")
}

func TestBuild_UnknownJournalDriver(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.PluginOptions.Entries["journal"] = genericoptions.PluginEntryConfig{
		Config: map[string]interface{}{"driver": "tape"},
	}
	_, _, err := Build(cfg)
	assert.Error(t, err)
}
