package importing

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/contre95/moodshelf/src/features/config"
	"github.com/contre95/moodshelf/src/features/session"
	"github.com/contre95/moodshelf/src/music"
)

var supportedExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// SnapshotReader decodes snapshot files.
type SnapshotReader interface {
	ReadFile(path string) (music.Snapshot, error)
}

// Result describes the import of a single file.
// Defaulted counts the songs of the file that needed defaults.
type Result struct {
	Path      string
	Songs     int
	Added     int
	Defaulted int
	Skipped   bool
}

// ImportStats contains statistics about the import process
type ImportStats struct {
	Files     int
	Songs     int
	Added     int
	Defaulted int
	Skipped   int
	Errors    int
}

// Service is the domain service for the importing feature.
type Service struct {
	reader   SnapshotReader
	registry Registry
	config   *config.Manager
}

// NewService creates a new importing service.
func NewService(reader SnapshotReader, registry Registry, cfg *config.Manager) *Service {
	return &Service{
		reader:   reader,
		registry: registry,
		config:   cfg,
	}
}

// ImportFile merges the songs and history of a snapshot file into sess. The
// profile stored in the file is ignored. A file version that was already
// imported is skipped.
func (s *Service) ImportFile(sess *session.Session, path string) (Result, error) {
	slog.Debug("ImportFile service called", "path", path, "session", sess.ID())
	result := Result{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return result, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("%s is a directory", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	id := FileID(abs, info.Size(), info.ModTime())
	if _, err := s.registry.GetByID(id); err == nil {
		slog.Info("Skipping already imported file", "path", path)
		result.Skipped = true
		return result, nil
	}

	snap, err := s.reader.ReadFile(path)
	if err != nil {
		slog.Error("ImportFile failed", "path", path, "error", err)
		return result, err
	}
	incoming, substituted := snap.Library(nil)
	result.Songs = len(snap.Songs)
	result.Defaulted = len(substituted)
	result.Added = sess.Import(incoming)
	for _, sub := range substituted {
		slog.Warn("Imported song stored with defaults", "path", path, "key", sub.Key.String(), "fields", sub.Defaults.Fields())
	}

	err = s.registry.Add(ImportedFile{
		ID:         id,
		Path:       abs,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		ImportedAt: time.Now(),
		Songs:      result.Songs,
		Added:      result.Added,
		Defaulted:  result.Defaulted,
	})
	if err != nil && !errors.Is(err, ErrAlreadyExists) {
		slog.Warn("Failed to register imported file", "path", path, "error", err)
	}
	slog.Debug("ImportFile completed", "path", path, "songs", result.Songs, "added", result.Added, "defaulted", result.Defaulted)
	return result, nil
}

// ImportDirectory imports every snapshot file directly inside dir, in name
// order. Failing files are counted and logged; the rest are still imported.
func (s *Service) ImportDirectory(sess *session.Session, dir string) (ImportStats, error) {
	slog.Debug("ImportDirectory service called", "path", dir)
	var stats ImportStats
	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("failed to read import directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	for _, name := range names {
		stats.Files++
		result, err := s.ImportFile(sess, filepath.Join(dir, name))
		if err != nil {
			stats.Errors++
			continue
		}
		if result.Skipped {
			stats.Skipped++
			continue
		}
		stats.Songs += result.Songs
		stats.Added += result.Added
		stats.Defaulted += result.Defaulted
	}
	slog.Info("Directory import completed", "path", dir, "files", stats.Files, "added", stats.Added, "errors", stats.Errors)
	return stats, nil
}

// HandleEvent imports the file of a watcher event. A removed file is
// forgotten by the registry, so a file dropped again under the same name is
// imported again.
func (s *Service) HandleEvent(sess *session.Session, event FileEvent) (Result, error) {
	if event.EventType == FileRemoved {
		s.forgetPath(event.Path)
		return Result{Path: event.Path, Skipped: true}, nil
	}
	return s.ImportFile(sess, event.Path)
}

func (s *Service) forgetPath(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for id, f := range s.registry.GetAll() {
		if f.Path != abs {
			continue
		}
		if err := s.registry.Remove(id); err != nil {
			slog.Warn("Failed to forget imported file", "path", path, "error", err)
		}
	}
}

// ForgetImports clears the registry so every file is imported again.
func (s *Service) ForgetImports() (int, error) {
	slog.Debug("ForgetImports service called")
	n := len(s.registry.GetAll())
	if err := s.registry.Clear(); err != nil {
		return 0, fmt.Errorf("failed to clear imported files: %w", err)
	}
	slog.Debug("ForgetImports completed", "forgotten", n)
	return n, nil
}

// ImportedFiles returns every registered file version, oldest import first.
func (s *Service) ImportedFiles() []ImportedFile {
	all := s.registry.GetAll()
	files := make([]ImportedFile, 0, len(all))
	for _, f := range all {
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b ImportedFile) int {
		return a.ImportedAt.Compare(b.ImportedAt)
	})
	return files
}

// WatchPath returns the configured import directory.
func (s *Service) WatchPath() string {
	return s.config.Get().Import.Path
}
