package playlists

import "github.com/contre95/moodshelf/src/music"

// M3UGenerator renders a mood playlist as an extended M3U document
type M3UGenerator interface {
	GenerateM3U(view music.PlaylistView) (string, error)
}

// SnapshotWriter writes a session snapshot to a file
type SnapshotWriter interface {
	WriteFile(path, sessionID string, snap music.Snapshot) error
}
