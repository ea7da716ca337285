package music

import (
	"fmt"
	"maps"
	"math"
)

// MoodProfile holds the non-negative weight of every mood. A valid profile
// has at least one positive weight.
type MoodProfile struct {
	weights map[Mood]float64
}

// DefaultMoodProfile weighs every mood equally.
func DefaultMoodProfile() MoodProfile {
	return MoodProfile{weights: map[Mood]float64{MoodChill: 1, MoodEnergetic: 1, MoodMixed: 1}}
}

// NewMoodProfile validates weights. Moods missing from the map weigh 0.
func NewMoodProfile(weights map[Mood]float64) (MoodProfile, error) {
	p := MoodProfile{weights: make(map[Mood]float64, len(Moods))}
	positive := false
	for m, w := range weights {
		if !m.Valid() {
			return MoodProfile{}, &InvalidProfileError{Reason: fmt.Sprintf("unknown mood %q", m)}
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return MoodProfile{}, &InvalidProfileError{Reason: fmt.Sprintf("weight of %s is not a finite number", m)}
		}
		if w < 0 {
			return MoodProfile{}, &InvalidProfileError{Reason: fmt.Sprintf("weight of %s is negative (%g)", m, w)}
		}
		if w > 0 {
			positive = true
		}
		p.weights[m] = w
	}
	if !positive {
		return MoodProfile{}, &InvalidProfileError{Reason: "all weights are zero"}
	}
	return p, nil
}

// Weight returns the weight of m.
func (p MoodProfile) Weight(m Mood) float64 {
	return p.weights[m]
}

// Weights returns a copy of the weights with every mood present.
func (p MoodProfile) Weights() map[Mood]float64 {
	out := make(map[Mood]float64, len(Moods))
	for _, m := range Moods {
		out[m] = 0
	}
	maps.Copy(out, p.weights)
	return out
}

// Rand is the randomness source of a Picker. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Picker draws weighted random songs from mood playlists.
type Picker struct {
	rng        Rand
	antiRepeat bool
}

// NewPicker creates a picker. With antiRepeat set, a draw equal to the
// previous pick is re-drawn once when the pool holds more than one song.
func NewPicker(rng Rand, antiRepeat bool) *Picker {
	return &Picker{rng: rng, antiRepeat: antiRepeat}
}

type poolEntry struct {
	song   Song
	weight float64
}

// Pick draws one song. Each mood contributes its profile weight split evenly
// across its songs; moods with zero weight or no songs contribute nothing.
// previous, when non-nil, is the key of the last lucky pick.
func (p *Picker) Pick(playlists Playlists, profile MoodProfile, previous *Key) (Song, error) {
	pool, total := buildPool(playlists, profile)
	if len(pool) == 0 {
		return Song{}, emptyPoolError(playlists, profile)
	}
	song := p.draw(pool, total)
	if p.antiRepeat && previous != nil && len(pool) > 1 && song.Key() == *previous {
		song = p.draw(pool, total)
	}
	return song, nil
}

// PickMood draws only from the playlist of mood.
func (p *Picker) PickMood(playlists Playlists, mood Mood, previous *Key) (Song, error) {
	if !mood.Valid() {
		return Song{}, &EmptyPoolError{Reason: fmt.Sprintf("unknown mood %q", mood)}
	}
	return p.Pick(playlists, MoodProfile{weights: map[Mood]float64{mood: 1}}, previous)
}

func buildPool(playlists Playlists, profile MoodProfile) ([]poolEntry, float64) {
	var pool []poolEntry
	total := 0.0
	for _, m := range Moods {
		w := profile.Weight(m)
		songs := playlists[m].Songs
		if w <= 0 || len(songs) == 0 {
			continue
		}
		share := w / float64(len(songs))
		for _, s := range songs {
			pool = append(pool, poolEntry{song: s, weight: share})
		}
		total += w
	}
	return pool, total
}

// draw performs a single random draw over the pool.
func (p *Picker) draw(pool []poolEntry, total float64) Song {
	r := p.rng.Float64() * total
	acc := 0.0
	for _, e := range pool {
		acc += e.weight
		if r < acc {
			return e.song
		}
	}
	return pool[len(pool)-1].song
}

func emptyPoolError(playlists Playlists, profile MoodProfile) *EmptyPoolError {
	songs := 0
	positive := false
	for _, m := range Moods {
		songs += len(playlists[m].Songs)
		if profile.Weight(m) > 0 {
			positive = true
		}
	}
	switch {
	case !positive:
		return &EmptyPoolError{Reason: "every mood weight is zero"}
	case songs == 0:
		return &EmptyPoolError{Reason: "library is empty"}
	}
	return &EmptyPoolError{Reason: "no songs in the weighted moods"}
}
