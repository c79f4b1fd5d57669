package scenehost

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kiosk404/scenekit/internal/scenehost/options"
	"github.com/kiosk404/scenekit/pkg/logger"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. SCENEKIT_GAME_FPS.
	EnvPrefix = "SCENEKIT"

	defaultConfigName = "scenehost"
)

// Loader reads Options from flags, environment and an optional config file,
// and can watch the file for changes.
type Loader struct {
	v *viper.Viper

	mu       sync.Mutex
	watching bool
}

// NewLoader creates a loader bound to fs. Flag names map to config keys with
// dashes turned into underscores ("game.max-frames" → game.max_frames).
func NewLoader(fs *pflag.FlagSet) (*Loader, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var bindErr error
	if fs != nil {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("bind flag %q: %w", f.Name, err)
			}
		})
	}
	if bindErr != nil {
		return nil, bindErr
	}
	return &Loader{v: v}, nil
}

// Load reads cfgFile, or scenehost.{yaml,json,toml} from ./.scenekit or the
// working directory when cfgFile is empty, and decodes the result. A missing
// default config file is not an error.
func (l *Loader) Load(cfgFile string) (*options.Options, error) {
	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		l.v.SetConfigName(defaultConfigName)
		l.v.AddConfigPath(".scenekit")
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logger.Info("[Config] using config file %s", l.v.ConfigFileUsed())
	}
	return l.decode()
}

func (l *Loader) decode() (*options.Options, error) {
	opts := options.NewOptions()
	if err := l.v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return opts, nil
}

// ConfigFile returns the config file in use, if any.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with freshly decoded options whenever the config file
// is written. It does nothing when no config file is in use.
func (l *Loader) Watch(onChange func(opts *options.Options)) {
	if l.ConfigFile() == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watching {
		return
	}
	l.watching = true

	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.handleChange(e, onChange)
	})
	l.v.WatchConfig()
	logger.Info("[Config] watching %s for changes", l.ConfigFile())
}

func (l *Loader) handleChange(e fsnotify.Event, onChange func(opts *options.Options)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	opts, err := l.decode()
	if err != nil {
		logger.Warn("[Config] ignoring change to %s: %v", e.Name, err)
		return
	}
	if errs := opts.GameOptions.Validate(); len(errs) > 0 {
		logger.Warn("[Config] ignoring change to %s: %v", e.Name, errors.Join(errs...))
		return
	}
	logger.Info("[Config] reloaded %s", e.Name)
	onChange(opts)
}
