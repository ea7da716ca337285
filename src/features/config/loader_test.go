package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_CreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	cfg := manager.Get()
	if !cfg.Session.AntiRepeat || cfg.Session.Profile.Chill != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg.Session)
	}
	if _, err := os.Stat(filepath.Join(dir, "playlists")); err != nil {
		t.Fatalf("expected export directory to be created: %v", err)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logger:
  level: debug
database:
  enabled: true
  path: ` + filepath.Join(dir, "db", "moodshelf.db") + `
session:
  anti_repeat: false
  profile:
    chill: 2
    energetic: 0
    mixed: 0
export:
  path: ` + filepath.Join(dir, "out") + `
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOODSHELF_LOGGER_LEVEL", "warn")
	t.Setenv("MOODSHELF_SESSION_SEED", "42")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := manager.Get()
	if cfg.Logger.Level != "warn" {
		t.Errorf("expected env override of level, got %q", cfg.Logger.Level)
	}
	if cfg.Logger.Format != "text" {
		t.Errorf("expected missing key to keep default format, got %q", cfg.Logger.Format)
	}
	if cfg.Session.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Session.Seed)
	}
	if cfg.Session.AntiRepeat {
		t.Error("expected anti_repeat from file to be false")
	}
	if cfg.Session.Profile.Chill != 2 || cfg.Session.Profile.Mixed != 0 {
		t.Errorf("unexpected profile %+v", cfg.Session.Profile)
	}
	if _, err := os.Stat(filepath.Join(dir, "db")); err != nil {
		t.Errorf("expected database directory to be created: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad level", mutate: func(c *Config) { c.Logger.Level = "loud" }, wantErr: true},
		{name: "negative weight", mutate: func(c *Config) { c.Session.Profile.Mixed = -1 }, wantErr: true},
		{name: "session id not a uuid", mutate: func(c *Config) { c.Session.ID = "abc" }, wantErr: true},
		{name: "session id uuid", mutate: func(c *Config) { c.Session.ID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8" }},
		{name: "watch without path", mutate: func(c *Config) { c.Import.Watch = true; c.Import.Path = "" }, wantErr: true},
		{name: "database disabled without path", mutate: func(c *Config) { c.Database.Enabled = false; c.Database.Path = "" }},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := createDefaultConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestManager_Dumps(t *testing.T) {
	m := NewManager(createDefaultConfig())
	if y := m.GetYAML(); !strings.Contains(y, "anti_repeat: true") {
		t.Errorf("unexpected YAML dump:\n%s", y)
	}
	if j := m.GetJSON(); !strings.Contains(j, `"debounce_secs":2`) {
		t.Errorf("unexpected JSON dump: %s", j)
	}
}

func TestManager_UpdateAndSave(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if manager.Path() != path {
		t.Fatalf("expected path %s, got %s", path, manager.Path())
	}

	cfg := *manager.Get()
	cfg.Session.ID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	cfg.Session.Profile = Profile{Chill: 3}
	manager.Update(&cfg)
	if err := manager.Save(manager.Path()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got := reloaded.Get().Session
	if got.ID != cfg.Session.ID || got.Profile != (Profile{Chill: 3}) {
		t.Fatalf("expected saved session settings, got %+v", got)
	}

	if err := NewManager(createDefaultConfig()).Save(""); err == nil {
		t.Fatal("expected an error when saving without a path")
	}
}
