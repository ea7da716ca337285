package database

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/contre95/moodshelf/src/features/session"
	"github.com/contre95/moodshelf/src/music"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSnapshot(t *testing.T) music.Snapshot {
	t.Helper()
	start := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	clock := func() time.Time { return start }
	lib := music.NewLibrary(clock)
	lib.Add(music.RawSong{Title: "Sunrise", Artist: "A", Genre: "ambient", Energy: 2})
	lib.Add(music.RawSong{Title: "Pump", Artist: "B", Genre: "edm", Energy: 9, Tags: []string{"gym", "Summer"}})
	lib.Add(music.RawSong{Title: "Nothing", Artist: "C", Genre: "", Energy: 5})
	pump, _ := lib.Get(music.KeyOf("Pump", "B"))
	lib.History().Append(music.NewHistoryEntry(music.HistoryLuckyPick, pump, lib.Stamp()))

	profile, err := music.NewMoodProfile(map[music.Mood]float64{music.MoodChill: 0.5, music.MoodEnergetic: 2})
	if err != nil {
		t.Fatal(err)
	}
	return music.TakeSnapshot(lib, profile)
}

func TestSqliteStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	if err := store.SaveSnapshot(ctx, "s1", snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	got, err := store.LoadSnapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if len(got.Songs) != len(snap.Songs) {
		t.Fatalf("expected %d songs, got %d", len(snap.Songs), len(got.Songs))
	}
	for i := range snap.Songs {
		want := snap.Songs[i]
		if got.Songs[i].ID != want.ID || got.Songs[i].Mood != want.Mood || !got.Songs[i].AddedAt.Equal(want.AddedAt) {
			t.Errorf("song %d: expected %+v, got %+v", i, want, got.Songs[i])
		}
	}
	if tags := got.Songs[1].Tags; !slices.Equal(tags, []string{"gym", "summer"}) {
		t.Errorf("expected Pump tags to survive in order, got %v", tags)
	}
	if got.Songs[0].Tags != nil {
		t.Errorf("expected no tags for Sunrise, got %v", got.Songs[0].Tags)
	}
	if len(got.History) != 4 || got.History[3].Kind != music.HistoryLuckyPick || got.History[3].Song != music.KeyOf("pump", "b") {
		t.Fatalf("unexpected history %+v", got.History)
	}
	if got.Profile.Weight(music.MoodEnergetic) != 2 || got.Profile.Weight(music.MoodMixed) != 0 {
		t.Fatalf("unexpected profile %v", got.Profile.Weights())
	}
}

func TestSqliteStore_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	snap := testSnapshot(t)
	if err := store.SaveSnapshot(ctx, "s1", snap); err != nil {
		t.Fatal(err)
	}
	snap.Songs = snap.Songs[:1]
	if err := store.SaveSnapshot(ctx, "s1", snap); err != nil {
		t.Fatal(err)
	}
	got, err := store.LoadSnapshot(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Songs) != 1 {
		t.Fatalf("expected the second save to replace the first, got %d songs", len(got.Songs))
	}
}

func TestSqliteStore_SessionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.SaveSnapshot(ctx, "s1", testSnapshot(t)); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSnapshot(ctx, "s2", music.Snapshot{}); err != nil {
		t.Fatal(err)
	}

	empty, err := store.LoadSnapshot(ctx, "s2")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Songs) != 0 || len(empty.History) != 0 {
		t.Fatalf("expected s2 to be empty, got %+v", empty)
	}

	ids, err := store.ListSessions(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("expected 2 sessions, got %v (%v)", ids, err)
	}

	if err := store.DeleteSnapshot(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadSnapshot(ctx, "s1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSqliteStore_WithManager(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	manager := session.NewManager(store, nil)

	s, err := manager.Open(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	s.AddSong(music.RawSong{Title: "Calm", Artist: "A", Genre: "lofi", Energy: 1})
	if err := manager.Close(ctx, s.ID()); err != nil {
		t.Fatal(err)
	}

	restored, err := manager.Open(ctx, s.ID())
	if err != nil {
		t.Fatal(err)
	}
	if songs := restored.Search("calm"); len(songs) != 1 || songs[0].Mood != music.MoodChill {
		t.Fatalf("expected Calm to be restored as Chill, got %+v", songs)
	}
}
