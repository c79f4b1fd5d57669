package entity

// Config is the resolved configuration of the journal plugin.
type Config struct {
	// Enabled controls whether the journal is installed into scenes.
	Enabled bool `json:"enabled"`

	// Store holds the storage backend configuration.
	Store StoreConfig `json:"store"`

	// RecordFrames also records preupdate, update and postupdate. Off by
	// default since it writes three entries per scene per frame.
	RecordFrames bool `json:"record_frames"`
}

// StoreConfig configures the storage backend.
type StoreConfig struct {
	// Driver is the storage driver: "boltdb" or "memory".
	Driver string `json:"driver"`

	// Path is the database file path for the boltdb driver.
	Path string `json:"path"`
}

const (
	DriverBoltDB = "boltdb"
	DriverMemory = "memory"
)

// DefaultConfig returns the default journal configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   ".scenekit/journal.db",
		},
	}
}
