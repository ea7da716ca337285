package snapshot

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/contre95/moodshelf/src/music"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Version is the file format version written by Encode.
const Version = 1

// File is the YAML layout of an exported session.
type File struct {
	Version    int       `yaml:"version" validate:"required,eq=1"`
	Session    string    `yaml:"session,omitempty" validate:"omitempty,uuid"`
	ExportedAt time.Time `yaml:"exported_at,omitempty"`
	Profile    *Profile  `yaml:"profile,omitempty"`
	Songs      []Song    `yaml:"songs" validate:"dive"`
	History    []Entry   `yaml:"history,omitempty" validate:"dive"`
}

type Profile struct {
	Chill     float64 `yaml:"chill" validate:"gte=0"`
	Energetic float64 `yaml:"energetic" validate:"gte=0"`
	Mixed     float64 `yaml:"mixed" validate:"gte=0"`
}

// Song keeps Energy loosely typed so hand-written files can use strings or
// floats. Every field is normalized on decode and substitutions are reported
// in the snapshot.
type Song struct {
	Title     string    `yaml:"title"`
	Artist    string    `yaml:"artist"`
	Genre     string    `yaml:"genre,omitempty"`
	Energy    any       `yaml:"energy,omitempty"`
	Mood      string    `yaml:"mood,omitempty"`
	Tags      []string  `yaml:"tags,omitempty"`
	AddedAt   time.Time `yaml:"added_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

type Entry struct {
	ID        string    `yaml:"id,omitempty"`
	Kind      string    `yaml:"kind" validate:"required"`
	Title     string    `yaml:"title"`
	Artist    string    `yaml:"artist"`
	Mood      string    `yaml:"mood,omitempty"`
	Timestamp time.Time `yaml:"timestamp" validate:"required"`
}

var validate = validator.New()

// Encode writes snap as a YAML document.
func Encode(w io.Writer, sessionID string, snap music.Snapshot, exportedAt time.Time) error {
	weights := snap.Profile.Weights()
	f := File{
		Version:    Version,
		Session:    sessionID,
		ExportedAt: exportedAt.UTC(),
		Profile: &Profile{
			Chill:     weights[music.MoodChill],
			Energetic: weights[music.MoodEnergetic],
			Mixed:     weights[music.MoodMixed],
		},
		Songs: make([]Song, 0, len(snap.Songs)),
	}
	for _, s := range snap.Songs {
		f.Songs = append(f.Songs, Song{
			Title:     s.Title,
			Artist:    s.Artist,
			Genre:     s.Genre,
			Energy:    s.Energy,
			Mood:      string(s.Mood),
			Tags:      s.Tags,
			AddedAt:   s.AddedAt.UTC(),
			UpdatedAt: s.UpdatedAt.UTC(),
		})
	}
	for _, e := range snap.History {
		f.History = append(f.History, Entry{
			ID:        e.ID,
			Kind:      string(e.Kind),
			Title:     e.Title,
			Artist:    e.Artist,
			Mood:      string(e.Mood),
			Timestamp: e.Timestamp.UTC(),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(f); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return encoder.Close()
}

// Decode reads and validates a YAML snapshot. Missing profiles decode to
// the zero profile; songs keep the order of the file.
func Decode(r io.Reader) (music.Snapshot, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return music.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return music.Snapshot{}, fmt.Errorf("snapshot validation failed: %w", err)
	}

	var snap music.Snapshot
	for _, s := range f.Songs {
		n, defaults := music.Normalize(music.RawSong{Title: s.Title, Artist: s.Artist, Genre: s.Genre, Energy: s.Energy, Tags: s.Tags})
		if defaults.Any() {
			snap.Substitutions = append(snap.Substitutions, music.Substitution{Key: n.Key(), Defaults: defaults})
		}
		snap.Songs = append(snap.Songs, music.Song{
			Title:     n.Title,
			Artist:    n.Artist,
			Genre:     n.Genre,
			Energy:    n.Energy,
			Mood:      music.Mood(s.Mood),
			Tags:      n.Tags,
			AddedAt:   s.AddedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	for _, e := range f.History {
		kind, err := music.ParseHistoryKind(e.Kind)
		if err != nil {
			return music.Snapshot{}, fmt.Errorf("history entry %q: %w", e.ID, err)
		}
		entry := music.NewHistoryEntry(kind, music.Song{Title: e.Title, Artist: e.Artist, Mood: music.Mood(e.Mood)}, e.Timestamp)
		if e.ID != "" {
			entry.ID = e.ID
		}
		snap.History = append(snap.History, entry)
	}
	if f.Profile != nil {
		profile, err := music.NewMoodProfile(map[music.Mood]float64{
			music.MoodChill:     f.Profile.Chill,
			music.MoodEnergetic: f.Profile.Energetic,
			music.MoodMixed:     f.Profile.Mixed,
		})
		if err != nil {
			return music.Snapshot{}, err
		}
		snap.Profile = profile
	}
	return snap, nil
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) (music.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return music.Snapshot{}, err
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return music.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// WriteFile encodes snap to path, replacing any existing file.
func WriteFile(path, sessionID string, snap music.Snapshot, exportedAt time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := Encode(f, sessionID, snap, exportedAt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Codec adapts the package functions to the reader and writer interfaces of
// the importing and playlists features.
type Codec struct{}

func (Codec) ReadFile(path string) (music.Snapshot, error) {
	return ReadFile(path)
}

func (Codec) WriteFile(path, sessionID string, snap music.Snapshot) error {
	return WriteFile(path, sessionID, snap, time.Now())
}
