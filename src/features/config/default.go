package config

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Database: Database{
			Enabled: true,
			Path:    "./moodshelf.db",
		},
		Session: Session{
			ID:         "",
			Seed:       0, // 0 seeds from the clock
			AntiRepeat: true,
			Profile: Profile{
				Chill:     1,
				Energetic: 1,
				Mixed:     1,
			},
		},
		Import: Import{
			Watch:        false,
			Path:         "./import",
			DebounceSecs: 2,
		},
		Export: Export{
			Path: "./playlists",
		},
	}
}
