package options

import (
	"github.com/spf13/pflag"

	genericoptions "github.com/kiosk404/scenekit/internal/pkg/options"
	"github.com/kiosk404/scenekit/pkg/utils/json"
)

// Options is the full configuration of the scenehost command.
type Options struct {
	GameOptions   *genericoptions.GameOptions    `json:"game"     mapstructure:"game"`
	LogOptions    *genericoptions.LogOptions     `json:"log"      mapstructure:"log"`
	PluginOptions *genericoptions.PluginsOptions `json:"plugins"  mapstructure:"plugins"`
}

// NewOptions returns Options populated with defaults.
func NewOptions() *Options {
	return &Options{
		GameOptions:   genericoptions.NewGameOptions(),
		LogOptions:    genericoptions.NewLogOptions(),
		PluginOptions: genericoptions.NewPluginsOptions(),
	}
}

// AddFlags registers every option group on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.GameOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.PluginOptions.AddFlags(fs)
}

// Validate checks every option group.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.GameOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.PluginOptions.Validate()...)
	return errs
}

func (o *Options) String() string {
	data, _ := json.MarshalString(o)

	return data
}
