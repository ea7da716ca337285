package music

import "slices"

// Snapshot is the persisted state of a session: its songs in insertion
// order, its history and its mood profile. Substitutions lists the defaults a
// decoder applied while reading the songs; it is not persisted.
type Snapshot struct {
	Songs         []Song
	History       []HistoryEntry
	Profile       MoodProfile
	Substitutions []Substitution
}

// TakeSnapshot captures the library together with profile.
func TakeSnapshot(l *Library, profile MoodProfile) Snapshot {
	return Snapshot{
		Songs:   l.All(),
		History: l.history.All(),
		Profile: profile,
	}
}

// Library rebuilds the library held by the snapshot. The returned
// substitutions cover both the decoder's and the restore's defaults.
func (s Snapshot) Library(clock Clock) (*Library, []Substitution) {
	l, substituted := RestoreLibrary(s.Songs, s.History, clock)
	return l, append(slices.Clone(s.Substitutions), substituted...)
}
