package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// GameOptions configures the game loop and the initial scenes.
type GameOptions struct {
	// FPS is the target step rate of the loop.
	FPS int `json:"fps" mapstructure:"fps"`
	// MaxFrames stops the loop after this many steps. 0 runs until
	// interrupted.
	MaxFrames int `json:"max_frames" mapstructure:"max_frames"`
	// Width and Height are the viewport size forwarded to scenes as resize.
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
	// Scenes are added in order before boot.
	Scenes []SceneOptions `json:"scenes" mapstructure:"scenes"`
}

// SceneOptions describes one scene to add.
type SceneOptions struct {
	Key     string                 `json:"key" mapstructure:"key"`
	Active  *bool                  `json:"active,omitempty" mapstructure:"active"`
	Visible *bool                  `json:"visible,omitempty" mapstructure:"visible"`
	Data    map[string]interface{} `json:"data,omitempty" mapstructure:"data"`
}

// NewGameOptions returns the default game options.
func NewGameOptions() *GameOptions {
	return &GameOptions{
		FPS:    60,
		Width:  800,
		Height: 600,
	}
}

// Validate checks GameOptions fields.
func (o *GameOptions) Validate() []error {
	var errs []error
	if o.FPS <= 0 || o.FPS > 1000 {
		errs = append(errs, fmt.Errorf("--game.fps must be in (0, 1000], got %d", o.FPS))
	}
	if o.MaxFrames < 0 {
		errs = append(errs, fmt.Errorf("--game.max-frames must not be negative"))
	}
	if o.Width <= 0 || o.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", o.Width, o.Height))
	}
	seen := make(map[string]struct{}, len(o.Scenes))
	for i, s := range o.Scenes {
		if s.Key == "" {
			errs = append(errs, fmt.Errorf("game.scenes[%d]: key is required", i))
			continue
		}
		if _, dup := seen[s.Key]; dup {
			errs = append(errs, fmt.Errorf("game.scenes[%d]: duplicate key %q", i, s.Key))
		}
		seen[s.Key] = struct{}{}
	}
	return errs
}

// AddFlags adds flags for the game options.
func (o *GameOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.FPS, "game.fps", o.FPS, "Target frames per second of the game loop.")
	fs.IntVar(&o.MaxFrames, "game.max-frames", o.MaxFrames, "Stop after this many frames (0 runs until interrupted).")
	fs.IntVar(&o.Width, "game.width", o.Width, "Viewport width.")
	fs.IntVar(&o.Height, "game.height", o.Height, "Viewport height.")
}
