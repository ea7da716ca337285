package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/contre95/moodshelf/src/music"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder("test-session")
	r.SongAdded(music.MoodChill, true)
	r.SongAdded(music.MoodChill, false)
	r.LuckyPicked(music.MoodEnergetic)
	r.LuckyPicked(music.MoodEnergetic)
	r.PickFailed()
	r.ProfileRejected()
	r.SongRemoved()

	if got := testutil.ToFloat64(r.songsAdded.WithLabelValues("Chill", "true")); got != 1 {
		t.Errorf("expected 1 new Chill add, got %v", got)
	}
	if got := testutil.ToFloat64(r.luckyPicks.WithLabelValues("Energetic")); got != 2 {
		t.Errorf("expected 2 Energetic picks, got %v", got)
	}
	if got := testutil.ToFloat64(r.emptyPools); got != 1 {
		t.Errorf("expected 1 empty pool, got %v", got)
	}
	if got := testutil.ToFloat64(r.profileRejected); got != 1 {
		t.Errorf("expected 1 rejected profile, got %v", got)
	}
}

func TestRecorder_SeparateSessions(t *testing.T) {
	a := NewRecorder("a")
	b := NewRecorder("b")
	a.SongRemoved()
	if got := testutil.ToFloat64(b.songsRemoved); got != 0 {
		t.Fatalf("expected sessions to have independent counters, got %v", got)
	}
}

func TestService_Dump(t *testing.T) {
	r := NewRecorder("dump")
	r.LibrarySize(map[music.Mood]int{music.MoodChill: 3, music.MoodMixed: 1})
	r.LuckyPicked(music.MoodChill)

	var buf bytes.Buffer
	if err := NewService(r).Dump(&buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"moodshelf_library_songs{mood=Chill} 3",
		"moodshelf_library_songs{mood=Energetic} 0",
		"moodshelf_lucky_picks_total{mood=Chill} 1",
		"moodshelf_songs_removed_total 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in dump:\n%s", want, out)
		}
	}
	if strings.Contains(out, "session=") {
		t.Errorf("expected session label to be dropped:\n%s", out)
	}
}
