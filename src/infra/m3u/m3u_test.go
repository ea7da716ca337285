package m3u

import (
	"strings"
	"testing"

	"github.com/contre95/moodshelf/src/music"
)

func TestGenerateM3U(t *testing.T) {
	lib := music.NewLibrary(nil)
	lib.Add(music.RawSong{Title: "Sunrise", Artist: "A", Genre: "ambient", Energy: 2})
	lib.Add(music.RawSong{Title: "Slow\nWaves", Artist: "B", Genre: "lofi", Energy: 1})
	view := music.BuildPlaylists(lib)[music.MoodChill]

	out, err := NewGenerator().GenerateM3U(view)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(out, "#EXTM3U\n#PLAYLIST:Chill\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	first := strings.Index(out, "#EXTINF:-1,A - Sunrise")
	second := strings.Index(out, "#EXTINF:-1,B - Slow Waves")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected both songs in insertion order:\n%s", out)
	}
	if !strings.Contains(out, "urn:uuid:"+view.Songs[0].ID) {
		t.Fatalf("expected song URN:\n%s", out)
	}
}

func TestGenerateM3U_Empty(t *testing.T) {
	out, _ := NewGenerator().GenerateM3U(music.PlaylistView{Mood: music.MoodMixed})
	if strings.Contains(out, "#EXTINF") {
		t.Fatalf("expected no entries:\n%s", out)
	}
}
