package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/contre95/moodshelf/src/music"
	"github.com/google/uuid"
)

// Recorder observes session activity. The metrics feature provides the
// prometheus implementation.
type Recorder interface {
	SongAdded(mood music.Mood, created bool)
	SongUpdated(mood music.Mood)
	SongRemoved()
	LuckyPicked(mood music.Mood)
	PickFailed()
	ProfileRejected()
	LibrarySize(byMood map[music.Mood]int)
}

type noopRecorder struct{}

func (noopRecorder) SongAdded(music.Mood, bool) {}
func (noopRecorder) SongUpdated(music.Mood) {}
func (noopRecorder) SongRemoved() {}
func (noopRecorder) LuckyPicked(music.Mood) {}
func (noopRecorder) PickFailed() {}
func (noopRecorder) ProfileRejected() {}
func (noopRecorder) LibrarySize(map[music.Mood]int) {}

// Options configures a new Session. Zero values pick sensible defaults: a
// fresh UUID, equal mood weights, a clock-seeded PCG source, time.Now and no
// metrics.
type Options struct {
	ID         string
	Profile    *music.MoodProfile
	AntiRepeat bool
	Rand       music.Rand
	Clock      music.Clock
	Recorder   Recorder
}

// Session owns one independent Library, History and MoodProfile. A Session
// is not safe for concurrent use; callers issue one operation at a time.
type Session struct {
	id       string
	library  *music.Library
	profile  music.MoodProfile
	picker   *music.Picker
	clock    music.Clock
	recorder Recorder
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	profile := music.DefaultMoodProfile()
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	return &Session{
		id:       opts.ID,
		library:  music.NewLibrary(opts.Clock),
		profile:  profile,
		picker:   music.NewPicker(opts.Rand, opts.AntiRepeat),
		clock:    opts.Clock,
		recorder: opts.Recorder,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AddSong normalizes, classifies and stores a song. It never fails; the
// returned Defaults report every substituted field.
func (s *Session) AddSong(raw music.RawSong) (music.Song, bool, music.Defaults) {
	slog.Debug("AddSong service called", "session", s.id, "title", raw.Title, "artist", raw.Artist)
	song, created, defaults := s.library.Add(raw)
	if defaults.Any() {
		slog.Warn("Song stored with defaults", "key", song.Key().String(), "fields", defaults.Fields())
	}
	s.recorder.SongAdded(song.Mood, created)
	s.observeSize()
	slog.Debug("AddSong completed", "key", song.Key().String(), "mood", song.Mood, "new", created)
	return song, created, defaults
}

// UpdateSong changes genre and energy of an existing song. found is false
// when no song matches title and artist.
func (s *Session) UpdateSong(title, artist, genre string, energy any) (music.Song, music.Defaults, bool) {
	slog.Debug("UpdateSong service called", "session", s.id, "title", title, "artist", artist)
	song, defaults, found := s.library.Update(music.KeyOf(title, artist), genre, energy)
	if !found {
		slog.Debug("UpdateSong found nothing", "title", title, "artist", artist)
		return music.Song{}, music.Defaults{}, false
	}
	s.recorder.SongUpdated(song.Mood)
	s.observeSize()
	slog.Debug("UpdateSong completed", "key", song.Key().String(), "mood", song.Mood)
	return song, defaults, true
}

// RemoveSong deletes a song. History entries that mention it are kept.
func (s *Session) RemoveSong(title, artist string) bool {
	slog.Debug("RemoveSong service called", "session", s.id, "title", title, "artist", artist)
	removed := s.library.Remove(music.KeyOf(title, artist))
	if removed {
		s.recorder.SongRemoved()
		s.observeSize()
	}
	slog.Debug("RemoveSong completed", "removed", removed)
	return removed
}

// GetPlaylists derives the mood playlists from the current library.
func (s *Session) GetPlaylists() music.Playlists {
	return music.BuildPlaylists(s.library)
}

// Search returns matching songs in insertion order.
func (s *Session) Search(query string) []music.Song {
	return s.SearchBy(music.FieldAny, query)
}

// SearchBy returns the songs whose field matches query.
func (s *Session) SearchBy(field music.SearchField, query string) []music.Song {
	slog.Debug("Search service called", "session", s.id, "field", field, "query", query)
	songs := music.SearchBy(s.library, field, query)
	slog.Debug("Search completed", "count", len(songs))
	return songs
}

// Reset drops every song and history entry. The mood profile is kept.
func (s *Session) Reset() int {
	slog.Debug("Reset service called", "session", s.id)
	n := s.library.Len()
	s.library.Reset()
	s.observeSize()
	slog.Info("Session reset", "session", s.id, "removed", n)
	return n
}

// GetStats aggregates the whole library.
func (s *Session) GetStats() music.Stats {
	return music.LibraryStats(s.library)
}

// StatsFor aggregates the playlist of one mood.
func (s *Session) StatsFor(mood music.Mood) (music.Stats, error) {
	if !mood.Valid() {
		return music.Stats{}, fmt.Errorf("unknown mood %q", mood)
	}
	return music.PlaylistStats(s.GetPlaylists()[mood]), nil
}

// SetMoodProfile replaces the mood weights. On error the previous profile
// stays in effect.
func (s *Session) SetMoodProfile(weights map[music.Mood]float64) error {
	slog.Debug("SetMoodProfile service called", "session", s.id, "weights", weights)
	profile, err := music.NewMoodProfile(weights)
	if err != nil {
		s.recorder.ProfileRejected()
		slog.Warn("SetMoodProfile rejected", "error", err)
		return err
	}
	s.profile = profile
	slog.Debug("SetMoodProfile completed", "weights", profile.Weights())
	return nil
}

// MoodProfile returns the profile in effect.
func (s *Session) MoodProfile() music.MoodProfile {
	return s.profile
}

// LuckyPick draws a song using the mood profile and records it in the
// history. A failed pick records nothing.
func (s *Session) LuckyPick() (music.Song, error) {
	slog.Debug("LuckyPick service called", "session", s.id)
	song, err := s.picker.Pick(s.GetPlaylists(), s.profile, s.previousPick())
	return s.recordPick(song, err)
}

// LuckyPickMood draws a song from a single mood playlist.
func (s *Session) LuckyPickMood(mood music.Mood) (music.Song, error) {
	slog.Debug("LuckyPickMood service called", "session", s.id, "mood", mood)
	song, err := s.picker.PickMood(s.GetPlaylists(), mood, s.previousPick())
	return s.recordPick(song, err)
}

func (s *Session) previousPick() *music.Key {
	last, ok := s.library.History().LastLuckyPick()
	if !ok {
		return nil
	}
	return &last.Song
}

func (s *Session) recordPick(song music.Song, err error) (music.Song, error) {
	if err != nil {
		if errors.Is(err, music.ErrEmptyPool) {
			s.recorder.PickFailed()
		}
		slog.Debug("LuckyPick failed", "error", err)
		return music.Song{}, err
	}
	s.library.History().Append(music.NewHistoryEntry(music.HistoryLuckyPick, song, s.library.Stamp()))
	s.recorder.LuckyPicked(song.Mood)
	slog.Debug("LuckyPick completed", "key", song.Key().String(), "mood", song.Mood)
	return song, nil
}

// GetHistory returns the history ordered by timestamp, optionally filtered
// by kind.
func (s *Session) GetHistory(kind *music.HistoryKind) []music.HistoryEntry {
	if kind == nil {
		return s.library.History().All()
	}
	return s.library.History().Filter(*kind)
}

// HistorySummary counts the moods of past lucky picks.
func (s *Session) HistorySummary() map[music.Mood]int {
	return s.library.History().MoodSummary()
}

// Import merges an independently built library into the session and
// returns how many songs were not present before.
func (s *Session) Import(incoming *music.Library) int {
	slog.Debug("Import service called", "session", s.id, "songs", incoming.Len())
	before := s.library.Len()
	s.library = music.Merge(s.library, incoming)
	added := s.library.Len() - before
	s.observeSize()
	slog.Info("Import completed", "session", s.id, "added", added, "total", s.library.Len())
	return added
}

// Snapshot captures the library, history and profile.
func (s *Session) Snapshot() music.Snapshot {
	return music.TakeSnapshot(s.library, s.profile)
}

// Restore replaces the session state with snap. Songs are re-classified on
// the way in and the ones that needed defaults are returned. A snapshot
// without a usable profile keeps the current one.
func (s *Session) Restore(snap music.Snapshot) []music.Substitution {
	slog.Debug("Restore service called", "session", s.id, "songs", len(snap.Songs), "history", len(snap.History))
	library, substituted := snap.Library(s.clock)
	s.library = library
	if profile, err := music.NewMoodProfile(snap.Profile.Weights()); err == nil {
		s.profile = profile
	} else {
		slog.Warn("Snapshot profile ignored", "session", s.id, "error", err)
	}
	s.observeSize()
	slog.Debug("Restore completed", "songs", s.library.Len(), "defaulted", len(substituted))
	return substituted
}

func (s *Session) observeSize() {
	counts := make(map[music.Mood]int, len(music.Moods))
	for m, view := range s.GetPlaylists() {
		counts[m] = view.Len()
	}
	s.recorder.LibrarySize(counts)
}
