package music

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultEnergy is used when a raw record carries no usable energy.
	DefaultEnergy = 5
	MinEnergy     = 0
	MaxEnergy     = 10

	UnknownGenre  = "unknown"
	UntitledTitle = "Untitled"
	UnknownArtist = "Unknown Artist"
)

// RawSong is a song record as submitted by a caller. Energy may be nil, any
// integer or float type, a json.Number or a string.
type RawSong struct {
	Title  string
	Artist string
	Genre  string
	Energy any
	Tags   []string
}

// Defaults reports every substitution made while normalizing a RawSong.
type Defaults struct {
	TitleMissing  bool
	ArtistMissing bool
	GenreUnknown  bool
	EnergyMissing bool
	EnergyClamped bool
}

// Any reports whether at least one default was substituted.
func (d Defaults) Any() bool {
	return d.TitleMissing || d.ArtistMissing || d.GenreUnknown || d.EnergyMissing || d.EnergyClamped
}

// Fields lists the names of the substituted fields, for warnings.
func (d Defaults) Fields() []string {
	var fields []string
	if d.TitleMissing {
		fields = append(fields, "title")
	}
	if d.ArtistMissing {
		fields = append(fields, "artist")
	}
	if d.GenreUnknown {
		fields = append(fields, "genre")
	}
	if d.EnergyMissing || d.EnergyClamped {
		fields = append(fields, "energy")
	}
	return fields
}

// Substitution is the Defaults report of one stored song that was read back
// with missing or invalid fields.
type Substitution struct {
	Key      Key
	Defaults Defaults
}

// NormalizedSong is the fixed-shape record that enters classification.
type NormalizedSong struct {
	Title  string
	Artist string
	Genre  string
	Energy int
	Tags   []string
}

// Key returns the identity key of the normalized record.
func (n NormalizedSong) Key() Key {
	return KeyOf(n.Title, n.Artist)
}

// Normalize canonicalizes a raw record. It never fails.
func Normalize(raw RawSong) (NormalizedSong, Defaults) {
	var d Defaults
	n := NormalizedSong{
		Title:  strings.TrimSpace(raw.Title),
		Artist: strings.TrimSpace(raw.Artist),
	}
	if n.Title == "" {
		n.Title = UntitledTitle
		d.TitleMissing = true
	}
	if n.Artist == "" {
		n.Artist = UnknownArtist
		d.ArtistMissing = true
	}
	n.Genre, d.GenreUnknown = NormalizeGenre(raw.Genre)
	n.Energy, d.EnergyMissing, d.EnergyClamped = NormalizeEnergy(raw.Energy)
	n.Tags = NormalizeTags(raw.Tags)
	return n, d
}

// NormalizeTags brings tags to their matching form, dropping empty and
// repeated ones. The first occurrence decides the order. A song without tags
// gets nil.
func NormalizeTags(raw []string) []string {
	var tags []string
	for _, t := range raw {
		t = matchForm(t)
		if t == "" || slices.Contains(tags, t) {
			continue
		}
		tags = append(tags, t)
	}
	return tags
}

// NormalizeGenre maps a raw genre onto the known set. The flag is true when
// the result is UnknownGenre.
func NormalizeGenre(raw string) (string, bool) {
	g := matchForm(raw)
	if g == "" {
		return UnknownGenre, true
	}
	if canonical, ok := genreAliases[g]; ok {
		g = canonical
	}
	if _, ok := genreLeans[g]; ok {
		return g, false
	}
	// "punk rock" -> "punk": first word that is itself a known genre.
	for _, word := range strings.FieldsFunc(g, func(r rune) bool { return r == ' ' || r == '-' || r == '/' }) {
		if canonical, ok := genreAliases[word]; ok {
			word = canonical
		}
		if _, ok := genreLeans[word]; ok {
			return word, false
		}
	}
	return UnknownGenre, true
}

// NormalizeEnergy converts a raw energy value into [MinEnergy, MaxEnergy].
// missing is set when DefaultEnergy was substituted, clamped when the value
// was out of range.
func NormalizeEnergy(raw any) (energy int, missing bool, clamped bool) {
	v, ok := energyValue(raw)
	if !ok {
		return DefaultEnergy, true, false
	}
	switch {
	case v < MinEnergy:
		return MinEnergy, false, true
	case v > MaxEnergy:
		return MaxEnergy, false, true
	}
	return int(v), false, false
}

func energyValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return roundFinite(float64(v))
	case float64:
		return roundFinite(v)
	case *int:
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	case json.Number:
		return energyValue(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.Atoi(s); err == nil {
			return float64(i), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return roundFinite(f)
		}
	}
	return 0, false
}

func roundFinite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Round(f), true
}
