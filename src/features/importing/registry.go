package importing

import (
	"errors"
	"fmt"
	"time"
)

// ErrAlreadyExists is returned when a file version was already imported.
var ErrAlreadyExists = errors.New("file already imported")

// ImportedFile records one imported version of a snapshot file.
type ImportedFile struct {
	ID         string
	Path       string
	Size       int64
	ModTime    time.Time
	ImportedAt time.Time
	Songs      int
	Added      int
	Defaulted  int
}

// Registry remembers which file versions were imported, so a file is merged
// once per modification.
type Registry interface {
	Add(item ImportedFile) error
	GetAll() map[string]ImportedFile
	GetByID(id string) (ImportedFile, error)
	Remove(id string) error
	Clear() error
}

// FileID identifies a version of a file by path, size and modification time.
func FileID(path string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s|%d|%d", path, size, modTime.UnixNano())
}
