package types

import (
	"path/filepath"
	"strings"
	"time"
)

// FileSnapshot is evidence of a file's state captured at enumeration time.
// It is produced once by the scanner and never mutated; by the time it is
// consumed it may no longer reflect the filesystem. Size and the two
// timestamps are optional because not every platform or mount reports them.
type FileSnapshot struct {
	Path        string     `json:"path"`
	Name        string     `json:"name"`
	Extension   string     `json:"extension,omitempty"`
	Size        *int64     `json:"size,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
	IsDirectory bool       `json:"is_directory"`
	IsSymlink   bool       `json:"is_symlink"`
	IsReadable  bool       `json:"is_readable"`
}

// NewFileSnapshot builds a snapshot for path, deriving name and extension.
// Metadata fields stay unset; the scanner fills in what it could observe.
func NewFileSnapshot(path string) FileSnapshot {
	name := filepath.Base(path)
	return FileSnapshot{
		Path:      path,
		Name:      name,
		Extension: strings.TrimPrefix(filepath.Ext(name), "."),
	}
}
