package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/contre95/moodshelf/src/features/session"
	"github.com/contre95/moodshelf/src/music"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore is a SQLite implementation of the session.Store interface.
// Every session owns its own rows, keyed by session ID.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database at path.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			modified_date TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS songs (
			session_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			genre TEXT NOT NULL,
			energy INTEGER NOT NULL,
			mood TEXT NOT NULL,
			added_date TEXT NOT NULL,
			modified_date TEXT NOT NULL,
			PRIMARY KEY (session_id, id),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE TABLE IF NOT EXISTS song_tags (
			session_id TEXT NOT NULL,
			song_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (session_id, song_id, position),
			FOREIGN KEY (session_id, song_id) REFERENCES songs(session_id, id)
		);

		CREATE TABLE IF NOT EXISTS history (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			kind TEXT NOT NULL,
			song_title TEXT NOT NULL,
			song_artist TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			mood TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			PRIMARY KEY (session_id, seq),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE TABLE IF NOT EXISTS profiles (
			session_id TEXT NOT NULL,
			mood TEXT NOT NULL,
			weight REAL NOT NULL,
			PRIMARY KEY (session_id, mood),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database.
func (d *SqliteStore) Close() error {
	return d.db.Close()
}

// SaveSnapshot replaces every stored row of the session with snap.
func (d *SqliteStore) SaveSnapshot(ctx context.Context, sessionID string, snap music.Snapshot) error {
	slog.Debug("SaveSnapshot called", "session", sessionID, "songs", len(snap.Songs), "history", len(snap.History))
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteSession(ctx, tx, sessionID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO sessions (id, modified_date) VALUES (?, ?)`,
		sessionID, formatTime(time.Now()))
	if err != nil {
		return err
	}

	for i, s := range snap.Songs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO songs (session_id, position, id, title, artist, genre, energy, mood, added_date, modified_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sessionID, i, s.ID, s.Title, s.Artist, s.Genre, s.Energy, string(s.Mood), formatTime(s.AddedAt), formatTime(s.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert song %q: %w", s.Title, err)
		}
		for j, tag := range s.Tags {
			_, err = tx.ExecContext(ctx, `INSERT INTO song_tags (session_id, song_id, position, tag) VALUES (?, ?, ?, ?)`,
				sessionID, s.ID, j, tag)
			if err != nil {
				return fmt.Errorf("failed to insert tag %q of song %q: %w", tag, s.Title, err)
			}
		}
	}

	for i, e := range snap.History {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO history (session_id, seq, id, kind, song_title, song_artist, title, artist, mood, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sessionID, i, e.ID, string(e.Kind), e.Song.Title, e.Song.Artist, e.Title, e.Artist, string(e.Mood), formatTime(e.Timestamp))
		if err != nil {
			return fmt.Errorf("failed to insert history entry %s: %w", e.ID, err)
		}
	}

	for mood, weight := range snap.Profile.Weights() {
		_, err = tx.ExecContext(ctx, `INSERT INTO profiles (session_id, mood, weight) VALUES (?, ?, ?)`,
			sessionID, string(mood), weight)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the snapshot of a session. It returns
// session.ErrNotFound when the session was never saved.
func (d *SqliteStore) LoadSnapshot(ctx context.Context, sessionID string) (music.Snapshot, error) {
	slog.Debug("LoadSnapshot called", "session", sessionID)
	var modified string
	err := d.db.QueryRowContext(ctx, `SELECT modified_date FROM sessions WHERE id = ?`, sessionID).Scan(&modified)
	if err != nil {
		if err == sql.ErrNoRows {
			return music.Snapshot{}, session.ErrNotFound
		}
		return music.Snapshot{}, err
	}

	var snap music.Snapshot
	if snap.Songs, err = d.loadSongs(ctx, sessionID); err != nil {
		return music.Snapshot{}, err
	}
	if snap.History, err = d.loadHistory(ctx, sessionID); err != nil {
		return music.Snapshot{}, err
	}
	if snap.Profile, err = d.loadProfile(ctx, sessionID); err != nil {
		return music.Snapshot{}, err
	}
	return snap, nil
}

func (d *SqliteStore) loadSongs(ctx context.Context, sessionID string) ([]music.Song, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, artist, genre, energy, mood, added_date, modified_date
		FROM songs WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []music.Song
	for rows.Next() {
		var s music.Song
		var mood, added, modified string
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &s.Genre, &s.Energy, &mood, &added, &modified); err != nil {
			return nil, err
		}
		s.Mood = music.Mood(mood)
		if s.AddedAt, err = parseTime(added); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = parseTime(modified); err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := d.loadTags(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range songs {
		songs[i].Tags = tags[songs[i].ID]
	}
	return songs, nil
}

func (d *SqliteStore) loadTags(ctx context.Context, sessionID string) (map[string][]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT song_id, tag FROM song_tags WHERE session_id = ? ORDER BY song_id, position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make(map[string][]string)
	for rows.Next() {
		var songID, tag string
		if err := rows.Scan(&songID, &tag); err != nil {
			return nil, err
		}
		tags[songID] = append(tags[songID], tag)
	}
	return tags, rows.Err()
}

func (d *SqliteStore) loadHistory(ctx context.Context, sessionID string) ([]music.HistoryEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, kind, song_title, song_artist, title, artist, mood, timestamp
		FROM history WHERE session_id = ? ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []music.HistoryEntry
	for rows.Next() {
		var e music.HistoryEntry
		var kind, mood, ts string
		if err := rows.Scan(&e.ID, &kind, &e.Song.Title, &e.Song.Artist, &e.Title, &e.Artist, &mood, &ts); err != nil {
			return nil, err
		}
		if e.Kind, err = music.ParseHistoryKind(kind); err != nil {
			return nil, err
		}
		e.Mood = music.Mood(mood)
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// loadProfile returns the zero profile when the stored weights are not a
// valid profile.
func (d *SqliteStore) loadProfile(ctx context.Context, sessionID string) (music.MoodProfile, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT mood, weight FROM profiles WHERE session_id = ?`, sessionID)
	if err != nil {
		return music.MoodProfile{}, err
	}
	defer rows.Close()

	weights := make(map[music.Mood]float64)
	for rows.Next() {
		var mood string
		var weight float64
		if err := rows.Scan(&mood, &weight); err != nil {
			return music.MoodProfile{}, err
		}
		weights[music.Mood(mood)] = weight
	}
	if err := rows.Err(); err != nil {
		return music.MoodProfile{}, err
	}
	profile, err := music.NewMoodProfile(weights)
	if err != nil {
		slog.Warn("Stored profile is not valid", "session", sessionID, "error", err)
		return music.MoodProfile{}, nil
	}
	return profile, nil
}

// DeleteSnapshot removes every row of the session.
func (d *SqliteStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	slog.Debug("DeleteSnapshot called", "session", sessionID)
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteSession(ctx, tx, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListSessions returns the stored session IDs, most recently saved first.
func (d *SqliteStore) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY modified_date DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func deleteSession(ctx context.Context, tx *sql.Tx, sessionID string) error {
	for _, table := range []string{"profiles", "history", "song_tags", "songs"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
