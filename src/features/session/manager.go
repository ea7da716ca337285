package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/contre95/moodshelf/src/music"
	"github.com/google/uuid"
)

// ErrNotFound is returned by a Store that holds no snapshot for a session.
var ErrNotFound = errors.New("session not found")

// Store persists session snapshots.
type Store interface {
	LoadSnapshot(ctx context.Context, sessionID string) (music.Snapshot, error)
	SaveSnapshot(ctx context.Context, sessionID string, snap music.Snapshot) error
	DeleteSnapshot(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]string, error)
}

// OptionsFunc builds the options of a session about to be opened.
type OptionsFunc func(id string) Options

// Manager keeps open sessions apart and moves them to and from a Store.
type Manager struct {
	mu       sync.Mutex
	store    Store
	options  OptionsFunc
	sessions map[string]*Session
}

// NewManager creates a new Manager. A nil options func uses zero Options.
func NewManager(store Store, options OptionsFunc) *Manager {
	if options == nil {
		options = func(string) Options { return Options{} }
	}
	return &Manager{
		store:    store,
		options:  options,
		sessions: make(map[string]*Session),
	}
}

// Open returns the session with the given ID, restoring it from the store
// when it is not open yet. An empty ID starts a new session; an unknown ID
// starts an empty session under that ID.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	slog.Debug("Open session service called", "id", id)
	if id == "" {
		id = uuid.New().String()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}

	opts := m.options(id)
	opts.ID = id
	s := New(opts)
	if m.store != nil {
		snap, err := m.store.LoadSnapshot(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound):
			slog.Info("Starting new session", "id", id)
		case err != nil:
			return nil, fmt.Errorf("failed to load session %s: %w", id, err)
		default:
			substituted := s.Restore(snap)
			slog.Info("Session restored", "id", id, "songs", len(snap.Songs), "history", len(snap.History), "defaulted", len(substituted))
		}
	}
	m.sessions[id] = s
	return s, nil
}

// Save writes the snapshot of s to the store.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveSnapshot(ctx, s.ID(), s.Snapshot()); err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.ID(), err)
	}
	slog.Debug("Session saved", "id", s.ID())
	return nil
}

// Close saves the session and forgets it.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.Save(ctx, s)
}

// Delete forgets the session and removes its snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	if err := m.store.DeleteSnapshot(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of every stored session.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListSessions(ctx)
}
