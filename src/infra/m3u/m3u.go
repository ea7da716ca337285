package m3u

import (
	"fmt"
	"strings"

	"github.com/contre95/moodshelf/src/features/playlists"
	"github.com/contre95/moodshelf/src/music"
)

// Generator implements the playlists.M3UGenerator interface
type Generator struct{}

// NewGenerator creates a new M3U generator
func NewGenerator() playlists.M3UGenerator {
	return Generator{}
}

// GenerateM3U generates M3U content from a mood playlist. Songs have no
// file on disk, so each location line is the song's URN.
func (Generator) GenerateM3U(view music.PlaylistView) (string, error) {
	var builder strings.Builder

	builder.WriteString("#EXTM3U\n")
	builder.WriteString(fmt.Sprintf("#PLAYLIST:%s\n\n", view.Mood))

	for _, song := range view.Songs {
		// Duration is unknown
		builder.WriteString(fmt.Sprintf("#EXTINF:-1,%s - %s\n", clean(song.Artist), clean(song.Title)))
		builder.WriteString(fmt.Sprintf("#EXTGENRE:%s\n", song.Genre))
		builder.WriteString("urn:uuid:" + song.ID)
		builder.WriteString("\n\n")
	}

	return builder.String(), nil
}

// clean keeps a field on a single line.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
