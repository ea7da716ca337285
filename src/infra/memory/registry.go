package memory

import (
	"errors"
	"sync"

	"github.com/contre95/moodshelf/src/features/importing"
)

// InMemoryRegistry is an in-memory implementation of the importing.Registry interface
type InMemoryRegistry struct {
	items sync.Map // map[string]importing.ImportedFile
}

// NewInMemoryRegistry creates a new in-memory registry
func NewInMemoryRegistry() importing.Registry {
	return &InMemoryRegistry{}
}

// Add records an imported file
func (r *InMemoryRegistry) Add(item importing.ImportedFile) error {
	if _, loaded := r.items.LoadOrStore(item.ID, item); loaded {
		return importing.ErrAlreadyExists
	}
	return nil
}

// GetAll returns all recorded files
func (r *InMemoryRegistry) GetAll() map[string]importing.ImportedFile {
	items := make(map[string]importing.ImportedFile)
	r.items.Range(func(key, value any) bool {
		if item, ok := value.(importing.ImportedFile); ok {
			if keyStr, ok := key.(string); ok {
				items[keyStr] = item
			}
		}
		return true
	})
	return items
}

// GetByID returns a specific file by ID
func (r *InMemoryRegistry) GetByID(id string) (importing.ImportedFile, error) {
	if value, ok := r.items.Load(id); ok {
		if item, ok := value.(importing.ImportedFile); ok {
			return item, nil
		}
	}
	return importing.ImportedFile{}, errors.New("item not found")
}

// Remove removes a file by ID
func (r *InMemoryRegistry) Remove(id string) error {
	if _, ok := r.items.LoadAndDelete(id); !ok {
		return errors.New("item not found")
	}
	return nil
}

// Clear removes all files from the registry
func (r *InMemoryRegistry) Clear() error {
	r.items.Clear()
	return nil
}
