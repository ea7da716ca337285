package music

import "time"

// Stats aggregates a set of songs. Averages and ratios of an empty set are 0.
type Stats struct {
	TotalCount          int
	CountByMood         map[Mood]int
	RatioByMood         map[Mood]float64
	AverageEnergy       float64
	AverageEnergyByMood map[Mood]float64
	TopGenre            string
	TopGenreCount       int
	TopArtist           string
	TopArtistCount      int
}

// LibraryStats aggregates the whole library.
func LibraryStats(l *Library) Stats {
	return ComputeStats(l.All())
}

// PlaylistStats aggregates a single playlist view.
func PlaylistStats(p PlaylistView) Stats {
	return ComputeStats(p.Songs)
}

// ComputeStats aggregates songs. Top genre and top artist ties go to the
// value whose first song was added earliest.
func ComputeStats(songs []Song) Stats {
	st := Stats{
		TotalCount:          len(songs),
		CountByMood:         make(map[Mood]int, len(Moods)),
		RatioByMood:         make(map[Mood]float64, len(Moods)),
		AverageEnergyByMood: make(map[Mood]float64, len(Moods)),
	}
	energyByMood := make(map[Mood]int, len(Moods))
	total := 0
	genres := newTally()
	artists := newTally()
	for _, s := range songs {
		st.CountByMood[s.Mood]++
		energyByMood[s.Mood] += s.Energy
		total += s.Energy
		genres.add(s.Genre, s.Genre, s.AddedAt)
		artists.add(matchForm(s.Artist), s.Artist, s.AddedAt)
	}
	for _, m := range Moods {
		n := st.CountByMood[m]
		st.CountByMood[m] = n
		st.RatioByMood[m] = ratio(n, st.TotalCount)
		st.AverageEnergyByMood[m] = ratio(energyByMood[m], n)
	}
	st.AverageEnergy = ratio(total, st.TotalCount)
	st.TopGenre, st.TopGenreCount = genres.top()
	st.TopArtist, st.TopArtistCount = artists.top()
	return st
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

type tallyEntry struct {
	display string
	count   int
	first   time.Time
}

// tally counts values by key, remembering the first display form and the
// earliest timestamp seen for each key.
type tally struct {
	entries map[string]*tallyEntry
	order   []string
}

func newTally() *tally {
	return &tally{entries: make(map[string]*tallyEntry)}
}

func (t *tally) add(key, display string, at time.Time) {
	e, ok := t.entries[key]
	if !ok {
		e = &tallyEntry{display: display, first: at}
		t.entries[key] = e
		t.order = append(t.order, key)
	}
	e.count++
	if at.Before(e.first) {
		e.first = at
	}
}

func (t *tally) top() (string, int) {
	var best *tallyEntry
	for _, key := range t.order {
		e := t.entries[key]
		if best == nil || e.count > best.count || (e.count == best.count && e.first.Before(best.first)) {
			best = e
		}
	}
	if best == nil {
		return "", 0
	}
	return best.display, best.count
}
