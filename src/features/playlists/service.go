package playlists

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/moodshelf/src/features/config"
	"github.com/contre95/moodshelf/src/features/session"
	"github.com/contre95/moodshelf/src/music"
)

// Service is the domain service for the playlists feature.
type Service struct {
	generator     M3UGenerator
	writer        SnapshotWriter
	configManager *config.Manager
}

// NewService creates a new playlists service.
func NewService(generator M3UGenerator, writer SnapshotWriter, cfgManager *config.Manager) *Service {
	return &Service{
		generator:     generator,
		writer:        writer,
		configManager: cfgManager,
	}
}

// ExportM3U writes one <mood>.m3u file per mood into the export path and
// returns the written paths. Empty moods produce a header-only file.
func (s *Service) ExportM3U(sess *session.Session) ([]string, error) {
	dir := s.configManager.Get().Export.Path
	slog.Debug("ExportM3U service called", "session", sess.ID(), "dir", dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	playlists := sess.GetPlaylists()
	paths := make([]string, 0, len(music.Moods))
	for _, mood := range music.Moods {
		content, err := s.generator.GenerateM3U(playlists[mood])
		if err != nil {
			slog.Error("ExportM3U: failed to generate playlist", "mood", mood, "error", err)
			return paths, err
		}
		path := filepath.Join(dir, strings.ToLower(string(mood))+".m3u")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			slog.Error("ExportM3U: failed to write file", "path", path, "error", err)
			return paths, fmt.Errorf("failed to write M3U file: %w", err)
		}
		paths = append(paths, path)
	}

	slog.Debug("ExportM3U completed", "files", len(paths))
	return paths, nil
}

// ExportSnapshot writes the session snapshot as session-<id>.yaml into the
// export path.
func (s *Service) ExportSnapshot(sess *session.Session) (string, error) {
	dir := s.configManager.Get().Export.Path
	slog.Debug("ExportSnapshot service called", "session", sess.ID(), "dir", dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, "session-"+sess.ID()+".yaml")
	if err := s.writer.WriteFile(path, sess.ID(), sess.Snapshot()); err != nil {
		slog.Error("ExportSnapshot failed", "path", path, "error", err)
		return "", err
	}
	slog.Debug("ExportSnapshot completed", "path", path)
	return path, nil
}
