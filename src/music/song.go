package music

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mood is the playlist category a song is classified into.
type Mood string

const (
	MoodChill     Mood = "Chill"
	MoodEnergetic Mood = "Energetic"
	MoodMixed     Mood = "Mixed"
)

// Moods lists every mood in the order playlists, stats and pools iterate them.
var Moods = []Mood{MoodChill, MoodEnergetic, MoodMixed}

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	switch m {
	case MoodChill, MoodEnergetic, MoodMixed:
		return true
	}
	return false
}

// ParseMood parses a mood name case-insensitively.
func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q", s)
}

// Key is the identity of a song inside a library: lower-cased,
// whitespace-collapsed title and artist.
type Key struct {
	Title  string
	Artist string
}

// KeyOf builds the identity key for a raw title and artist.
func KeyOf(title, artist string) Key {
	return Key{Title: matchForm(title), Artist: matchForm(artist)}
}

func (k Key) String() string {
	return k.Artist + " - " + k.Title
}

// ID returns a deterministic UUID for the key, stable across sessions.
func (k Key) ID() string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(k.Title+"\x00"+k.Artist)).String()
}

// Song is one library entry. Mood is always Classify(Genre, Energy).
type Song struct {
	ID        string
	Title     string
	Artist    string
	Genre     string
	Energy    int
	Mood      Mood
	Tags      []string
	AddedAt   time.Time
	UpdatedAt time.Time
}

// Key returns the identity key of the song.
func (s Song) Key() Key {
	return KeyOf(s.Title, s.Artist)
}

// Pretty returns a one-line representation for listings.
func (s Song) Pretty() string {
	pretty := fmt.Sprintf("%s - %s [%s, energy %d, %s]", s.Artist, s.Title, s.Genre, s.Energy, s.Mood)
	for _, t := range s.Tags {
		pretty += " #" + t
	}
	return pretty
}

// matchForm trims, collapses internal whitespace and lower-cases s.
func matchForm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
