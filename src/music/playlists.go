package music

import (
	"fmt"
	"strings"
)

// PlaylistView is a read-only, derived list of the songs of one mood in
// insertion order.
type PlaylistView struct {
	Mood  Mood
	Songs []Song
}

// Playlists maps every mood to its view.
type Playlists map[Mood]PlaylistView

// BuildPlaylists derives one view per mood from the current library
// contents. Every mood is present, possibly empty. Each song appears in
// exactly one view.
func BuildPlaylists(l *Library) Playlists {
	return GroupByMood(l.All())
}

// GroupByMood splits already ordered songs into per-mood views.
func GroupByMood(songs []Song) Playlists {
	playlists := make(Playlists, len(Moods))
	for _, m := range Moods {
		playlists[m] = PlaylistView{Mood: m, Songs: []Song{}}
	}
	for _, s := range songs {
		view := playlists[s.Mood]
		view.Songs = append(view.Songs, s)
		playlists[s.Mood] = view
	}
	return playlists
}

// Len returns the number of songs in the view.
func (p PlaylistView) Len() int {
	return len(p.Songs)
}

// Pretty returns a formatted representation of the playlist for listings.
func (p PlaylistView) Pretty() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s (%d)\n", p.Mood, len(p.Songs)))
	for i, s := range p.Songs {
		builder.WriteString(fmt.Sprintf("  %d. %s - %s [%s, %d]\n", i+1, s.Artist, s.Title, s.Genre, s.Energy))
	}
	return builder.String()
}
