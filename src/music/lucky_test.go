package music

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// fixedRand replays a sequence of draws, repeating the last one.
type fixedRand struct {
	values []float64
	calls  int
}

func (r *fixedRand) Float64() float64 {
	v := r.values[min(r.calls, len(r.values)-1)]
	r.calls++
	return v
}

func mustProfile(t *testing.T, weights map[Mood]float64) MoodProfile {
	t.Helper()
	p, err := NewMoodProfile(weights)
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func TestNewMoodProfile(t *testing.T) {
	tests := []struct {
		name    string
		weights map[Mood]float64
		wantErr bool
	}{
		{name: "single positive weight", weights: map[Mood]float64{MoodChill: 1}},
		{name: "zero weights allowed with one positive", weights: map[Mood]float64{MoodChill: 0, MoodEnergetic: 0.5, MoodMixed: 0}},
		{name: "all zero", weights: map[Mood]float64{MoodChill: 0, MoodEnergetic: 0, MoodMixed: 0}, wantErr: true},
		{name: "empty", weights: map[Mood]float64{}, wantErr: true},
		{name: "negative", weights: map[Mood]float64{MoodChill: 2, MoodMixed: -1}, wantErr: true},
		{name: "unknown mood", weights: map[Mood]float64{Mood("Sad"): 1}, wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMoodProfile(tc.weights)
			if tc.wantErr {
				var invalid *InvalidProfileError
				if !errors.As(err, &invalid) || !errors.Is(err, ErrInvalidProfile) {
					t.Fatalf("expected InvalidProfileError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestPicker_OnlyWeightedMood(t *testing.T) {
	lib := NewLibrary(stepClock(epoch))
	lib.Add(RawSong{Title: "Calm", Artist: "A", Genre: "ambient", Energy: 1})
	lib.Add(RawSong{Title: "Still", Artist: "B", Genre: "lofi", Energy: 3})
	lib.Add(RawSong{Title: "Quiet", Artist: "C", Genre: "jazz", Energy: 0})
	profile := mustProfile(t, map[Mood]float64{MoodChill: 1, MoodEnergetic: 0, MoodMixed: 0})

	picker := NewPicker(rand.New(rand.NewPCG(42, 7)), true)
	playlists := BuildPlaylists(lib)
	var previous *Key
	for i := 0; i < 1000; i++ {
		song, err := picker.Pick(playlists, profile, previous)
		if err != nil {
			t.Fatalf("draw %d: unexpected error %v", i, err)
		}
		if song.Mood != MoodChill {
			t.Fatalf("draw %d: expected Chill, got %s", i, song.Mood)
		}
		k := song.Key()
		previous = &k
	}
}

func TestPicker_ZeroWeightMoodNeverDrawn(t *testing.T) {
	lib := seededLibrary()
	profile := mustProfile(t, map[Mood]float64{MoodChill: 0, MoodEnergetic: 3, MoodMixed: 0})
	picker := NewPicker(rand.New(rand.NewPCG(1, 2)), false)
	playlists := BuildPlaylists(lib)
	for i := 0; i < 1000; i++ {
		song, err := picker.Pick(playlists, profile, nil)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if song.Mood != MoodEnergetic {
			t.Fatalf("expected Energetic, got %s", song.Mood)
		}
	}
}

func TestPicker_WeightSplitAcrossMood(t *testing.T) {
	lib := NewLibrary(stepClock(epoch))
	lib.Add(RawSong{Title: "C1", Artist: "A", Genre: "ambient", Energy: 1})
	lib.Add(RawSong{Title: "C2", Artist: "A", Genre: "ambient", Energy: 1})
	lib.Add(RawSong{Title: "M1", Artist: "A", Genre: "pop", Energy: 5})
	profile := mustProfile(t, map[Mood]float64{MoodChill: 1, MoodMixed: 1})
	playlists := BuildPlaylists(lib)

	// Pool: C1 [0, .5), C2 [.5, 1), M1 [1, 2).
	tests := []struct {
		draw float64
		want string
	}{
		{draw: 0.1, want: "C1"},
		{draw: 0.3, want: "C2"},
		{draw: 0.6, want: "M1"},
		{draw: 0.99, want: "M1"},
	}
	for _, tc := range tests {
		picker := NewPicker(&fixedRand{values: []float64{tc.draw}}, false)
		song, err := picker.Pick(playlists, profile, nil)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if song.Title != tc.want {
			t.Errorf("draw %v: expected %s, got %s", tc.draw, tc.want, song.Title)
		}
	}
}

func TestPicker_AntiRepeatRedrawsOnce(t *testing.T) {
	lib := NewLibrary(stepClock(epoch))
	lib.Add(RawSong{Title: "C1", Artist: "A", Genre: "ambient", Energy: 1})
	lib.Add(RawSong{Title: "C2", Artist: "A", Genre: "ambient", Energy: 1})
	playlists := BuildPlaylists(lib)
	profile := DefaultMoodProfile()
	previous := KeyOf("C1", "A")

	rng := &fixedRand{values: []float64{0.1, 0.9}}
	song, err := NewPicker(rng, true).Pick(playlists, profile, &previous)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if song.Title != "C2" || rng.calls != 2 {
		t.Fatalf("expected a single re-draw landing on C2, got %s after %d draws", song.Title, rng.calls)
	}

	rng = &fixedRand{values: []float64{0.1}}
	song, _ = NewPicker(rng, true).Pick(playlists, profile, &previous)
	if song.Title != "C1" || rng.calls != 2 {
		t.Fatalf("expected the re-draw to be accepted even when repeating, got %s after %d draws", song.Title, rng.calls)
	}
}

func TestPicker_SingleSongPoolDoesNotRedraw(t *testing.T) {
	lib := NewLibrary(stepClock(epoch))
	lib.Add(RawSong{Title: "Only", Artist: "A", Genre: "ambient", Energy: 1})
	previous := KeyOf("Only", "A")
	rng := &fixedRand{values: []float64{0.5}}
	song, err := NewPicker(rng, true).Pick(BuildPlaylists(lib), DefaultMoodProfile(), &previous)
	if err != nil || song.Title != "Only" {
		t.Fatalf("expected Only, got %v (%v)", song.Title, err)
	}
	if rng.calls != 1 {
		t.Fatalf("expected exactly one draw, got %d", rng.calls)
	}
}

func TestPicker_EmptyPool(t *testing.T) {
	picker := NewPicker(rand.New(rand.NewPCG(1, 1)), true)

	_, err := picker.Pick(BuildPlaylists(NewLibrary(nil)), DefaultMoodProfile(), nil)
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool for empty library, got %v", err)
	}

	lib := seededLibrary()
	_, err = picker.Pick(BuildPlaylists(lib), MoodProfile{}, nil)
	var empty *EmptyPoolError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyPoolError for zero weights, got %v", err)
	}

	chillOnly := NewLibrary(stepClock(epoch))
	chillOnly.Add(RawSong{Title: "Calm", Artist: "A", Genre: "ambient", Energy: 1})
	_, err = picker.PickMood(BuildPlaylists(chillOnly), MoodEnergetic, nil)
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool for empty mood, got %v", err)
	}
}
