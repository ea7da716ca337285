package config

// Config holds the application configuration.
type Config struct {
	Logger   Logger   `yaml:"logger" json:"logger"`
	Database Database `yaml:"database" json:"database"`
	Session  Session  `yaml:"session" json:"session"`
	Import   Import   `yaml:"import" json:"import"`
	Export   Export   `yaml:"export" json:"export"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Level   string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" json:"format" validate:"oneof=text json logfmt"`
}

// Database holds the configuration for the snapshot store
type Database struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path" validate:"required_if=Enabled true"`
}

// Session configures the session opened at startup.
type Session struct {
	// ID of the session to resume. Empty starts a new one.
	ID         string  `yaml:"id" json:"id" validate:"omitempty,uuid"`
	Seed       uint64  `yaml:"seed" json:"seed"`
	AntiRepeat bool    `yaml:"anti_repeat" json:"anti_repeat" split_words:"true"`
	Profile    Profile `yaml:"profile" json:"profile"`
}

// Profile holds the initial mood weights.
type Profile struct {
	Chill     float64 `yaml:"chill" json:"chill" validate:"gte=0"`
	Energetic float64 `yaml:"energetic" json:"energetic" validate:"gte=0"`
	Mixed     float64 `yaml:"mixed" json:"mixed" validate:"gte=0"`
}

// Import configures the snapshot drop directory.
type Import struct {
	Watch        bool   `yaml:"watch" json:"watch"`
	Path         string `yaml:"path" json:"path" validate:"required_if=Watch true"`
	DebounceSecs int    `yaml:"debounce_secs" json:"debounce_secs" validate:"gte=0" split_words:"true"`
}

// Export configures where playlists are written.
type Export struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}
