package options

import (
	"fmt"

	"github.com/bytedance/gg/gptr"
	"github.com/spf13/pflag"
)

// PluginsOptions holds the top-level configuration for the plugin system.
type PluginsOptions struct {
	// Enabled controls whether built-in plugins are installed. (default: true)
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Allow lists plugins that may be installed. Empty allows all.
	Allow []string `json:"allow" mapstructure:"allow"`
	// Deny lists plugins that must not be installed. Deny wins over Allow.
	Deny []string `json:"deny" mapstructure:"deny"`
	// Slots controls which plugin occupies each exclusive scene slot.
	// Special value "none" disables all plugins of the kind.
	Slots PluginSlotsConfig `json:"slots" mapstructure:"slots"`
	// Entries holds per-plugin configuration, keyed by plugin key
	// (e.g. "journal", "framestats", "inspector").
	Entries map[string]PluginEntryConfig `json:"entries" mapstructure:"entries"`
}

// PluginSlotsConfig maps slot kind -> desired plugin key.
type PluginSlotsConfig struct {
	Recorder string `json:"recorder" mapstructure:"recorder"`
	Stats    string `json:"stats" mapstructure:"stats"`
}

// PluginEntryConfig holds per-plugin configuration.
type PluginEntryConfig struct {
	Enabled *bool                  `json:"enabled,omitempty" mapstructure:"enabled"`
	Config  map[string]interface{} `json:"config,omitempty" mapstructure:"config"`
}

// NewPluginsOptions returns a new instance of PluginsOptions.
func NewPluginsOptions() *PluginsOptions {
	return &PluginsOptions{
		Enabled: true,
		Allow:   []string{},
		Deny:    []string{},
		Slots: PluginSlotsConfig{
			Recorder: "journal",
			Stats:    "framestats",
		},
		Entries: make(map[string]PluginEntryConfig),
	}
}

// SlotConfig returns the slots as a kind -> key map.
func (o *PluginsOptions) SlotConfig() map[string]string {
	return map[string]string{
		"recorder": o.Slots.Recorder,
		"stats":    o.Slots.Stats,
	}
}

// IsEnabled reports whether the plugin with the given key may be installed:
// the plugin system is on, the key passes Allow/Deny and its entry is not
// switched off.
func (o *PluginsOptions) IsEnabled(key string) bool {
	if !o.Enabled {
		return false
	}
	for _, d := range o.Deny {
		if d == key {
			return false
		}
	}
	if len(o.Allow) > 0 {
		allowed := false
		for _, a := range o.Allow {
			if a == key {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if entry, ok := o.Entries[key]; ok {
		return gptr.IndirectOr(entry.Enabled, true)
	}
	return true
}

// EntryConfig returns the config map of a plugin entry, or nil.
func (o *PluginsOptions) EntryConfig(key string) map[string]interface{} {
	if o == nil {
		return nil
	}
	return o.Entries[key].Config
}

// Validate checks PluginsOptions fields.
func (o *PluginsOptions) Validate() []error {
	var errs []error

	for kind, name := range o.SlotConfig() {
		if name == "" || name == "none" {
			continue
		}
		// Valid plugin keys are DNS-compatible.
		for _, c := range name {
			if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_') {
				errs = append(errs, fmt.Errorf("invalid character %q in %s slot name", c, kind))
				break
			}
		}
	}

	return errs
}

// AddFlags adds flags for the plugins options.
// Only global-level switches are exposed as CLI flags.
// Per-plugin configuration is done via the configuration file.
func (o *PluginsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "plugins.enabled", o.Enabled, "Enable the built-in plugins.")
	fs.StringSliceVar(&o.Deny, "plugins.deny", o.Deny, "Plugins that must not be installed.")
	fs.StringVar(&o.Slots.Recorder, "plugins.slots.recorder", o.Slots.Recorder, "Plugin occupying the recorder slot, or none.")
	fs.StringVar(&o.Slots.Stats, "plugins.slots.stats", o.Slots.Stats, "Plugin occupying the stats slot, or none.")
}
