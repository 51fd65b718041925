// Package trash implements the recoverable trash location deletes are routed
// through. A trashed file is moved under the store directory with a unique
// name and recorded in a JSON manifest so it can be restored to its original
// path later. Nothing here ever unlinks file content.
package trash

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"kondo/internal/errors"

	"github.com/google/uuid"
)

const manifestName = "manifest.json"

// Entry records one trashed file: where it came from and where it sits now.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	IsDir     bool      `json:"is_dir"`
}

type manifest struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Store is a trash directory plus its manifest. Operations are serialized
// through one mutex; the manifest is rewritten atomically after each change.
type Store struct {
	dir   string
	mu    sync.Mutex
	newID func() string
}

// NewStore opens (creating if needed) a trash store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(errors.TrashOperationFailed, dir, err)
	}
	return &Store{dir: dir, newID: newEntryID}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Put moves path into the trash and returns the manifest entry ID.
func (s *Store) Put(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.SourceMissing, path, err)
		}
		return "", errors.New(errors.TrashOperationFailed, path, err)
	}

	entry := Entry{
		ID:        s.newID(),
		Name:      filepath.Base(path),
		From:      path,
		Timestamp: time.Now(),
		IsDir:     info.IsDir(),
	}
	entry.To = filepath.Join(s.dir, entry.ID+"-"+entry.Name)

	if err := os.Rename(path, entry.To); err != nil {
		return "", errors.New(errors.TrashOperationFailed, path, err)
	}

	m, err := s.load()
	if err != nil {
		return "", err
	}
	m.Entries = append(m.Entries, entry)
	if err := s.save(m); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// Entry looks up a manifest entry by ID.
func (s *Store) Entry(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return Entry{}, false
	}
	for _, e := range m.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns every live manifest entry, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return nil
	}
	return m.Entries
}

// Restore moves the trashed file back to its original path and drops the
// manifest entry. It never overwrites: if the original path is occupied it
// fails with DestinationOccupied and leaves the trash untouched.
func (s *Store) Restore(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	idx := -1
	for i, e := range m.Entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New(errors.OriginalLocationUnknown, id, nil)
	}
	entry := m.Entries[idx]

	if _, err := os.Lstat(entry.From); err == nil {
		return errors.New(errors.DestinationOccupied, entry.From, nil)
	}
	if _, err := os.Lstat(entry.To); err != nil {
		return errors.New(errors.SourceMissing, entry.To, err)
	}

	if err := os.MkdirAll(filepath.Dir(entry.From), 0o755); err != nil {
		return errors.New(errors.ParentDirCreateFailed, filepath.Dir(entry.From), err)
	}
	if err := os.Rename(entry.To, entry.From); err != nil {
		return errors.New(errors.TrashOperationFailed, entry.To, err)
	}

	m.Entries = append(m.Entries[:idx], m.Entries[idx+1:]...)
	return s.save(m)
}

// Remove drops the manifest entry without touching the trashed payload. The
// file stays under the store directory at its recorded path; only the mapping
// back to the original location is forgotten, so content is never unlinked.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	for i, e := range m.Entries {
		if e.ID == id {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return s.save(m)
		}
	}
	return errors.New(errors.OriginalLocationUnknown, id, nil)
}

func (s *Store) load() (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return &manifest{Version: 1}, nil
		}
		return nil, errors.New(errors.TrashOperationFailed, s.dir, err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.TrashOperationFailed, s.dir, err)
	}
	return &m, nil
}

func (s *Store) save(m *manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.New(errors.TrashOperationFailed, s.dir, err)
	}
	tmp := filepath.Join(s.dir, manifestName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.New(errors.TrashOperationFailed, s.dir, err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, manifestName)); err != nil {
		return errors.New(errors.TrashOperationFailed, s.dir, err)
	}
	return nil
}

func newEntryID() string {
	return uuid.New().String()
}
