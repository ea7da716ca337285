package music

// Merge combines two libraries into a new one. Songs are united by key; on a
// collision the most recently touched entry (later UpdatedAt) supplies the
// field values and the earlier AddedAt is kept, so the song holds its
// original position. Ties keep the primary's values. Both history logs are
// concatenated and re-sorted by timestamp without de-duplication. Neither
// input is modified; the result uses the primary's clock.
func Merge(primary, incoming *Library) *Library {
	out := NewLibrary(primary.clock)
	for _, s := range primary.All() {
		out.put(s)
	}
	for _, s := range incoming.All() {
		out.put(s)
	}
	out.history = primary.history.clone()
	for _, e := range incoming.history.entries {
		out.history.Append(e)
	}
	out.advance(primary.last)
	out.advance(incoming.last)
	return out
}

func mergeSongs(current, other Song) Song {
	winner := current
	if other.UpdatedAt.After(current.UpdatedAt) {
		winner = other
	}
	winner.AddedAt = current.AddedAt
	if other.AddedAt.Before(current.AddedAt) {
		winner.AddedAt = other.AddedAt
	}
	if winner.UpdatedAt.Before(winner.AddedAt) {
		winner.UpdatedAt = winner.AddedAt
	}
	return winner
}
