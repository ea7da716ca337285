package music

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryKind is the type of event recorded in the history log.
type HistoryKind string

const (
	HistoryAdded     HistoryKind = "Added"
	HistoryLuckyPick HistoryKind = "LuckyPick"
)

// ParseHistoryKind parses a kind name case-insensitively. "lucky" is accepted
// as a short form of LuckyPick.
func ParseHistoryKind(s string) (HistoryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "added", "add":
		return HistoryAdded, nil
	case "luckypick", "lucky", "pick":
		return HistoryLuckyPick, nil
	}
	return "", fmt.Errorf("unknown history kind %q", s)
}

// HistoryEntry is an immutable record of an addition or a lucky pick. Title,
// Artist and Mood are captured at the time of the event.
type HistoryEntry struct {
	ID        string
	Kind      HistoryKind
	Song      Key
	Title     string
	Artist    string
	Mood      Mood
	Timestamp time.Time
}

// NewHistoryEntry builds an entry for song at ts. The ID is derived from
// kind, song key and timestamp, so replaying the same operations against the
// same clock yields the same history.
func NewHistoryEntry(kind HistoryKind, song Song, ts time.Time) HistoryEntry {
	key := song.Key()
	return HistoryEntry{
		ID:        historyEntryID(kind, key, ts),
		Kind:      kind,
		Song:      key,
		Title:     song.Title,
		Artist:    song.Artist,
		Mood:      song.Mood,
		Timestamp: ts,
	}
}

func historyEntryID(kind HistoryKind, key Key, ts time.Time) string {
	name := fmt.Sprintf("%s\x00%s\x00%s\x00%d", kind, key.Title, key.Artist, ts.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// History is an append-only log kept ordered by timestamp.
type History struct {
	entries []HistoryEntry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records an entry. Entries with equal timestamps keep append order.
func (h *History) Append(e HistoryEntry) {
	i := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Timestamp.After(e.Timestamp)
	})
	h.entries = slices.Insert(h.entries, i, e)
}

// All returns a copy of every entry ordered by timestamp.
func (h *History) All() []HistoryEntry {
	return slices.Clone(h.entries)
}

// Filter returns the entries of one kind, ordered by timestamp.
func (h *History) Filter(kind HistoryKind) []HistoryEntry {
	var out []HistoryEntry
	for _, e := range h.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// LastLuckyPick returns the most recent LuckyPick entry.
func (h *History) LastLuckyPick() (HistoryEntry, bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Kind == HistoryLuckyPick {
			return h.entries[i], true
		}
	}
	return HistoryEntry{}, false
}

// MoodSummary counts the moods of every lucky pick. All moods are present.
func (h *History) MoodSummary() map[Mood]int {
	summary := make(map[Mood]int, len(Moods))
	for _, m := range Moods {
		summary[m] = 0
	}
	for _, e := range h.entries {
		if e.Kind != HistoryLuckyPick {
			continue
		}
		if e.Mood.Valid() {
			summary[e.Mood]++
		} else {
			summary[MoodMixed]++
		}
	}
	return summary
}

func (h *History) clone() *History {
	return &History{entries: slices.Clone(h.entries)}
}
