package music

import (
	"cmp"
	"slices"
	"testing"
	"time"
)

func keysOf(songs []Song) []Key {
	keys := make([]Key, len(songs))
	for i, s := range songs {
		keys[i] = s.Key()
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.Artist, b.Artist))
	})
	return keys
}

func TestMerge_CollisionKeepsEarlierPositionAndLaterFields(t *testing.T) {
	primary := NewLibrary(stepClock(epoch))
	primary.Add(RawSong{Title: "Shared", Artist: "X", Genre: "ambient", Energy: 2})
	primary.Add(RawSong{Title: "OnlyPrimary", Artist: "P", Genre: "pop", Energy: 5})

	incoming := NewLibrary(stepClock(epoch.Add(time.Hour)))
	incoming.Add(RawSong{Title: "OnlyIncoming", Artist: "I", Genre: "rock", Energy: 8})
	incoming.Add(RawSong{Title: "shared", Artist: "x", Genre: "edm", Energy: 9})

	merged := Merge(primary, incoming)
	if merged.Len() != 3 {
		t.Fatalf("expected 3 songs, got %d", merged.Len())
	}
	shared, ok := merged.Get(KeyOf("Shared", "X"))
	if !ok {
		t.Fatal("expected shared song in merged library")
	}
	if shared.Genre != "edm" || shared.Energy != 9 || shared.Mood != MoodEnergetic {
		t.Fatalf("expected incoming (later) fields to win, got %+v", shared)
	}
	if !shared.AddedAt.Equal(epoch.Add(time.Second)) {
		t.Fatalf("expected earlier AddedAt to be kept, got %v", shared.AddedAt)
	}
	if first := merged.All()[0]; first.Key() != KeyOf("shared", "x") {
		t.Fatalf("expected shared song to keep the first position, got %q", first.Title)
	}
	if got := merged.History().Len(); got != 4 {
		t.Fatalf("expected concatenated history of 4 entries, got %d", got)
	}
	if primary.Len() != 2 || incoming.Len() != 2 {
		t.Fatal("expected inputs to be left untouched")
	}
}

func TestMerge_HistorySortedByTimestamp(t *testing.T) {
	a := NewLibrary(stepClock(epoch))
	b := NewLibrary(stepClock(epoch.Add(500 * time.Millisecond)))
	a.Add(RawSong{Title: "A1", Artist: "A", Genre: "pop", Energy: 5})
	a.Add(RawSong{Title: "A2", Artist: "A", Genre: "pop", Energy: 5})
	b.Add(RawSong{Title: "B1", Artist: "B", Genre: "pop", Energy: 5})

	entries := Merge(a, b).History().All()
	want := []string{"A1", "B1", "A2"}
	for i, e := range entries {
		if e.Title != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], e.Title)
		}
	}
}

func TestMerge_OrderIndependentSongSet(t *testing.T) {
	build := func(offset time.Duration, raws ...RawSong) *Library {
		l := NewLibrary(stepClock(epoch.Add(offset)))
		for _, r := range raws {
			l.Add(r)
		}
		return l
	}
	a := build(0, RawSong{Title: "One", Artist: "A", Genre: "rock", Energy: 8}, RawSong{Title: "Two", Artist: "A", Genre: "jazz", Energy: 2})
	b := build(time.Minute, RawSong{Title: "two", Artist: "a", Genre: "jazz", Energy: 6}, RawSong{Title: "Three", Artist: "B", Genre: "pop", Energy: 5})
	c := build(2*time.Minute, RawSong{Title: "Four", Artist: "C", Genre: "edm", Energy: 9}, RawSong{Title: "ONE", Artist: "a", Genre: "rock", Energy: 3})

	orders := [][3]*Library{{a, b, c}, {c, b, a}, {b, a, c}, {a, c, b}}
	var want []Key
	for i, o := range orders {
		merged := Merge(Merge(o[0], o[1]), o[2])
		keys := keysOf(merged.All())
		if len(keys) != 4 {
			t.Fatalf("order %d: expected 4 songs, got %d", i, len(keys))
		}
		if want == nil {
			want = keys
			continue
		}
		if !slices.Equal(keys, want) {
			t.Fatalf("order %d: song set %v differs from %v", i, keys, want)
		}
	}
	one, _ := Merge(Merge(c, a), b).Get(KeyOf("one", "a"))
	if one.Energy != 3 || !one.AddedAt.Equal(epoch.Add(time.Second)) {
		t.Fatalf("expected latest fields with earliest AddedAt, got %+v", one)
	}
}
