package options

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// LogOptions configures the logger.
type LogOptions struct {
	// Level is a logrus level name.
	Level string `json:"level" mapstructure:"level"`
	// Path, when set, also writes logs to this file.
	Path string `json:"path" mapstructure:"path"`
}

// NewLogOptions returns the default log options.
func NewLogOptions() *LogOptions {
	return &LogOptions{Level: "info"}
}

// Validate checks LogOptions fields.
func (o *LogOptions) Validate() []error {
	if _, err := logrus.ParseLevel(o.Level); err != nil {
		return []error{err}
	}
	return nil
}

// AddFlags adds flags for the log options.
func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level (debug, info, warn, error).")
	fs.StringVar(&o.Path, "log.path", o.Path, "Also write logs to this file.")
}
