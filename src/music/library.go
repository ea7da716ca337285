package music

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Clock supplies timestamps to a Library.
type Clock func() time.Time

// Library is the authoritative in-memory song collection of one session. It
// owns the identity rule and the history log of its additions.
type Library struct {
	songs   map[Key]Song
	history *History
	clock   Clock
	last    time.Time
}

// NewLibrary creates an empty library. A nil clock means time.Now.
func NewLibrary(clock Clock) *Library {
	if clock == nil {
		clock = time.Now
	}
	return &Library{
		songs:   make(map[Key]Song),
		history: NewHistory(),
		clock:   clock,
	}
}

// Stamp returns the next timestamp of this library. Timestamps are strictly
// increasing even when the clock stalls or goes backwards.
func (l *Library) Stamp() time.Time {
	t := l.clock()
	if !t.After(l.last) {
		t = l.last.Add(time.Nanosecond)
	}
	l.last = t
	return t
}

// Add normalizes, classifies and stores a raw record. An existing song with
// the same key is updated in place and keeps its AddedAt. Every call appends
// an Added history entry.
func (l *Library) Add(raw RawSong) (Song, bool, Defaults) {
	n, defaults := Normalize(raw)
	key := n.Key()
	now := l.Stamp()
	song, exists := l.songs[key]
	if exists {
		song.Genre = n.Genre
		song.Energy = n.Energy
		song.Mood = Classify(n.Genre, n.Energy)
		song.Tags = n.Tags
		song.UpdatedAt = now
		slog.Debug("Song updated in place", "key", key.String(), "mood", song.Mood)
	} else {
		song = Song{
			ID:        key.ID(),
			Title:     n.Title,
			Artist:    n.Artist,
			Genre:     n.Genre,
			Energy:    n.Energy,
			Mood:      Classify(n.Genre, n.Energy),
			Tags:      n.Tags,
			AddedAt:   now,
			UpdatedAt: now,
		}
		slog.Debug("Song added", "key", key.String(), "mood", song.Mood)
	}
	l.songs[key] = song
	l.history.Append(NewHistoryEntry(HistoryAdded, song, now))
	return song, !exists, defaults
}

// Update changes the genre and energy of an existing song and re-classifies
// it. found is false when no song has the key.
func (l *Library) Update(key Key, genre string, energy any) (song Song, defaults Defaults, found bool) {
	song, found = l.songs[key]
	if !found {
		return Song{}, Defaults{}, false
	}
	song.Genre, defaults.GenreUnknown = NormalizeGenre(genre)
	song.Energy, defaults.EnergyMissing, defaults.EnergyClamped = NormalizeEnergy(energy)
	song.Mood = Classify(song.Genre, song.Energy)
	song.UpdatedAt = l.Stamp()
	l.songs[key] = song
	return song, defaults, true
}

// Remove deletes the song with the given key. History is left untouched.
func (l *Library) Remove(key Key) bool {
	if _, ok := l.songs[key]; !ok {
		return false
	}
	delete(l.songs, key)
	return true
}

// Get returns the song with the given key.
func (l *Library) Get(key Key) (Song, bool) {
	s, ok := l.songs[key]
	return s, ok
}

// All returns every song ordered by AddedAt, ties broken by key.
func (l *Library) All() []Song {
	songs := slices.Collect(maps.Values(l.songs))
	slices.SortFunc(songs, compareSongs)
	return songs
}

// Len returns the number of songs.
func (l *Library) Len() int {
	return len(l.songs)
}

// History returns the history log owned by the library.
func (l *Library) History() *History {
	return l.history
}

// Reset drops every song and history entry.
func (l *Library) Reset() {
	l.songs = make(map[Key]Song)
	l.history = NewHistory()
}

// RestoreLibrary rebuilds a library from stored songs and history. Every song
// is re-normalized and re-classified; AddedAt and UpdatedAt are kept. Songs
// that needed defaults are logged and reported, including songs that
// collapsed onto the key of an earlier one.
func RestoreLibrary(songs []Song, history []HistoryEntry, clock Clock) (*Library, []Substitution) {
	l := NewLibrary(clock)
	var substituted []Substitution
	for _, stored := range songs {
		n, defaults := Normalize(RawSong{Title: stored.Title, Artist: stored.Artist, Genre: stored.Genre, Energy: stored.Energy, Tags: stored.Tags})
		key := n.Key()
		// A stored "unknown" genre was already reported when it was first set.
		if stored.Genre == UnknownGenre {
			defaults.GenreUnknown = false
		}
		if defaults.Any() {
			slog.Warn("Stored song restored with defaults", "key", key.String(), "fields", defaults.Fields())
			substituted = append(substituted, Substitution{Key: key, Defaults: defaults})
		}
		s := Song{
			ID:        key.ID(),
			Title:     n.Title,
			Artist:    n.Artist,
			Genre:     n.Genre,
			Energy:    n.Energy,
			Mood:      Classify(n.Genre, n.Energy),
			Tags:      n.Tags,
			AddedAt:   stored.AddedAt,
			UpdatedAt: stored.UpdatedAt,
		}
		if stored.Mood != "" && stored.Mood != s.Mood {
			slog.Warn("Stored mood disagrees with classification, using classification", "key", key.String(), "stored", stored.Mood, "classified", s.Mood)
		}
		if _, ok := l.songs[key]; ok {
			slog.Warn("Stored songs share a key, merging them", "key", key.String())
		}
		if s.AddedAt.IsZero() {
			s.AddedAt = l.Stamp()
		}
		if s.UpdatedAt.Before(s.AddedAt) {
			s.UpdatedAt = s.AddedAt
		}
		l.put(s)
	}
	for _, e := range history {
		l.history.Append(e)
		l.advance(e.Timestamp)
	}
	return l, substituted
}

// put stores s, resolving a key collision with mergeSongs.
func (l *Library) put(s Song) {
	key := s.Key()
	if existing, ok := l.songs[key]; ok {
		s = mergeSongs(existing, s)
	}
	l.songs[key] = s
	l.advance(s.AddedAt)
	l.advance(s.UpdatedAt)
}

func (l *Library) advance(t time.Time) {
	if t.After(l.last) {
		l.last = t
	}
}

func compareSongs(a, b Song) int {
	if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
		return c
	}
	ka, kb := a.Key(), b.Key()
	if c := cmp.Compare(ka.Title, kb.Title); c != 0 {
		return c
	}
	return cmp.Compare(ka.Artist, kb.Artist)
}
