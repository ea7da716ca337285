package snapshot

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/contre95/moodshelf/src/music"
)

func TestEncodeDecode_KeepsOrderAndMoods(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	tick := start
	lib := music.NewLibrary(func() time.Time { tick = tick.Add(time.Minute); return tick })
	lib.Add(music.RawSong{Title: "Zebra", Artist: "A", Genre: "ambient", Energy: 2})
	lib.Add(music.RawSong{Title: "Apple", Artist: "B", Genre: "edm", Energy: 9})
	profile, _ := music.NewMoodProfile(map[music.Mood]float64{music.MoodChill: 1})
	snap := music.TakeSnapshot(lib, profile)

	path := filepath.Join(t.TempDir(), "export.yaml")
	if err := WriteFile(path, "", snap, start); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	restored, substituted := got.Library(nil)
	if len(substituted) != 0 {
		t.Fatalf("expected no defaults for an encoded library, got %+v", substituted)
	}
	songs := restored.All()
	if len(songs) != 2 || songs[0].Title != "Zebra" || songs[1].Title != "Apple" {
		t.Fatalf("expected added_at order to survive, got %+v", songs)
	}
	if songs[0].Mood != music.MoodChill || songs[1].Mood != music.MoodEnergetic {
		t.Fatalf("expected moods to survive, got %s and %s", songs[0].Mood, songs[1].Mood)
	}
	if restored.History().Len() != 2 {
		t.Fatalf("expected 2 history entries, got %d", restored.History().Len())
	}
	if got.Profile.Weight(music.MoodChill) != 1 || got.Profile.Weight(music.MoodMixed) != 0 {
		t.Fatalf("unexpected profile %v", got.Profile.Weights())
	}
}

func TestDecode_HandWrittenFile(t *testing.T) {
	doc := `
version: 1
songs:
  - title: Night Drive
    artist: Echo
    genre: Punk Rock
    energy: "8.4"
  - title: Quiet
    artist: Nobody
`
	snap, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	lib, substituted := snap.Library(nil)
	if len(substituted) != 1 || substituted[0].Key != music.KeyOf("quiet", "nobody") {
		t.Fatalf("expected only Quiet to be reported, got %+v", substituted)
	}
	if d := substituted[0].Defaults; !d.EnergyMissing || !d.GenreUnknown || d.TitleMissing {
		t.Fatalf("expected genre and energy defaults for Quiet, got %+v", d)
	}
	drive, ok := lib.Get(music.KeyOf("night drive", "echo"))
	if !ok || drive.Energy != 8 || drive.Genre != "punk" || drive.Mood != music.MoodEnergetic {
		t.Fatalf("unexpected song %+v", drive)
	}
	quiet, _ := lib.Get(music.KeyOf("Quiet", "Nobody"))
	if quiet.Energy != music.DefaultEnergy || quiet.Mood != music.MoodMixed {
		t.Fatalf("expected defaults for missing fields, got %+v", quiet)
	}
}

func TestDecode_ReportsDefaults(t *testing.T) {
	doc := `
version: 1
songs:
  - title: ""
    artist: ""
    genre: polka
  - title: " "
    artist: ""
    energy: 3
    tags: [Road, road, ""]
`
	snap, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(snap.Substitutions) != 2 {
		t.Fatalf("expected 2 reported songs, got %+v", snap.Substitutions)
	}
	first := snap.Songs[0]
	if first.Title != music.UntitledTitle || first.Artist != music.UnknownArtist || first.Genre != music.UnknownGenre || first.Energy != music.DefaultEnergy {
		t.Fatalf("expected every default on the first song, got %+v", first)
	}
	if d := snap.Substitutions[0].Defaults; !d.TitleMissing || !d.ArtistMissing || !d.GenreUnknown || !d.EnergyMissing {
		t.Fatalf("expected every field reported, got %+v", d)
	}
	if tags := snap.Songs[1].Tags; len(tags) != 1 || tags[0] != "road" {
		t.Fatalf("expected normalized tags, got %v", tags)
	}

	lib, substituted := snap.Library(nil)
	if len(substituted) != 2 {
		t.Fatalf("expected decoder defaults to be reported once each, got %+v", substituted)
	}
	if lib.Len() != 1 {
		t.Fatalf("expected both untitled songs on one key, got %d", lib.Len())
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing version":  "songs: []\n",
		"wrong version":    "version: 2\nsongs: []\n",
		"negative weight":  "version: 1\nprofile: {chill: -1, energetic: 1, mixed: 0}\nsongs: []\n",
		"all zero profile": "version: 1\nprofile: {chill: 0, energetic: 0, mixed: 0}\nsongs: []\n",
		"bad history kind": "version: 1\nhistory:\n  - kind: removed\n    timestamp: 2024-01-01T00:00:00Z\n",
		"not yaml":         "version: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(doc)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
	_, err := Decode(strings.NewReader("version: 1\nprofile: {chill: 0, energetic: 0, mixed: 0}\n"))
	if !errors.Is(err, music.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestEncode_Layout(t *testing.T) {
	lib := music.NewLibrary(nil)
	lib.Add(music.RawSong{Title: "Pump", Artist: "B", Genre: "edm", Energy: 9, Tags: []string{"gym"}})
	var buf bytes.Buffer
	if err := Encode(&buf, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", music.TakeSnapshot(lib, music.DefaultMoodProfile()), time.Now()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"version: 1", "session: 6ba7b810", "energy: 9", "mood: Energetic", "- gym", "kind: Added"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
