package config

import (
	"github.com/kiosk404/scenekit/internal/game"
	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/scene"
	"github.com/kiosk404/scenekit/internal/scenehost/options"
)

// Config is the running configuration of scenehost.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration from options.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}

// GameConfig builds the game configuration.
func (c *Config) GameConfig() *game.Config {
	o := c.GameOptions
	scenes := make([]scene.Config, 0, len(o.Scenes))
	for _, s := range o.Scenes {
		scenes = append(scenes, scene.Config{
			Key:     s.Key,
			Active:  s.Active,
			Visible: s.Visible,
			Data:    scene.Data(s.Data),
		})
	}
	return &game.Config{
		FPS:        o.FPS,
		MaxFrames:  o.MaxFrames,
		Width:      o.Width,
		Height:     o.Height,
		Scenes:     scenes,
		SlotConfig: plugin.SlotConfig(c.PluginOptions.SlotConfig()),
	}
}
