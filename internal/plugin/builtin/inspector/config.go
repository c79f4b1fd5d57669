package inspector

import "time"

// Config is the resolved configuration of the inspector plugin.
type Config struct {
	// Enabled controls whether the inspector is installed.
	Enabled bool `json:"enabled"`

	// Addr is the listen address of the HTTP server.
	Addr string `json:"addr"`

	// Token, when set, is required as a Bearer token on every request except
	// health checks and loopback requests.
	Token string `json:"token"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Pprof mounts the runtime profiler under /debug/pprof.
	Pprof bool `json:"pprof"`
}

// DefaultConfig returns the default inspector configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Addr:            "127.0.0.1:11790",
		ShutdownTimeout: 5 * time.Second,
	}
}
