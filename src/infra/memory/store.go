package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/contre95/moodshelf/src/features/session"
	"github.com/contre95/moodshelf/src/music"
)

// InMemoryStore keeps session snapshots for the lifetime of the process.
// It backs the session manager when the database is disabled.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]music.Snapshot
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[string]music.Snapshot)}
}

func (s *InMemoryStore) LoadSnapshot(ctx context.Context, sessionID string) (music.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[sessionID]
	if !ok {
		return music.Snapshot{}, session.ErrNotFound
	}
	return cloneSnapshot(snap), nil
}

func (s *InMemoryStore) SaveSnapshot(ctx context.Context, sessionID string, snap music.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sessionID] = cloneSnapshot(snap)
	return nil
}

func (s *InMemoryStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

func (s *InMemoryStore) ListSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func cloneSnapshot(snap music.Snapshot) music.Snapshot {
	songs := slices.Clone(snap.Songs)
	for i := range songs {
		songs[i].Tags = slices.Clone(songs[i].Tags)
	}
	return music.Snapshot{
		Songs:   songs,
		History: slices.Clone(snap.History),
		Profile: snap.Profile,
	}
}
