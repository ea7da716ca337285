package music

import (
	"slices"
	"strings"

	"github.com/gosimple/unidecode"
)

// SearchField restricts a search to one song field.
type SearchField string

const (
	FieldAny    SearchField = ""
	FieldTitle  SearchField = "title"
	FieldArtist SearchField = "artist"
	FieldGenre  SearchField = "genre"
	FieldTag    SearchField = "tag"
)

// ParseSearchQuery splits an optional "field:" prefix off query, as in
// "artist:wave". Text without a known prefix, colon included, searches every
// field.
func ParseSearchQuery(query string) (SearchField, string) {
	name, rest, ok := strings.Cut(strings.TrimSpace(query), ":")
	if !ok {
		return FieldAny, query
	}
	switch field := SearchField(strings.ToLower(name)); field {
	case FieldTitle, FieldArtist, FieldGenre, FieldTag:
		return field, rest
	case "tags":
		return FieldTag, rest
	}
	return FieldAny, query
}

// Search returns the songs whose title, artist, genre or tags contain query,
// case- and accent-insensitively, in insertion order. An empty query matches
// every song.
func Search(l *Library, query string) []Song {
	return SearchBy(l, FieldAny, query)
}

// SearchBy is Search restricted to field. A query naming a known genre or
// one of its aliases also matches the canonical genre, so "lo-fi" finds
// songs stored as "lofi".
func SearchBy(l *Library, field SearchField, query string) []Song {
	songs := l.All()
	q := foldText(query)
	if q == "" {
		return songs
	}
	genre := canonicalGenre(query)
	out := []Song{}
	for _, s := range songs {
		if matches(s, field, q, genre) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s Song, field SearchField, q, genre string) bool {
	title := func() bool { return strings.Contains(foldText(s.Title), q) }
	artist := func() bool { return strings.Contains(foldText(s.Artist), q) }
	genreMatch := func() bool { return strings.Contains(s.Genre, q) || (genre != "" && s.Genre == genre) }
	tag := func() bool {
		return slices.ContainsFunc(s.Tags, func(t string) bool { return strings.Contains(foldText(t), q) })
	}
	switch field {
	case FieldTitle:
		return title()
	case FieldArtist:
		return artist()
	case FieldGenre:
		return genreMatch()
	case FieldTag:
		return tag()
	}
	return title() || artist() || genreMatch() || tag()
}

// canonicalGenre returns the known genre query names, directly or through an
// alias, or "" when it names none.
func canonicalGenre(query string) string {
	g := matchForm(query)
	if alias, ok := genreAliases[g]; ok {
		g = alias
	}
	if !KnownGenre(g) {
		return ""
	}
	return g
}

// foldText brings s to its matching form and strips diacritics so that
// "beyonce" finds "Beyoncé".
func foldText(s string) string {
	return matchForm(unidecode.Unidecode(s))
}
