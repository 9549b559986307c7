// Package registry implements the persisted file registry backing the
// upload console.
package registry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fsd-console/backend/internal/models"
)

// indexFileName is the msgpack snapshot of the registry metadata,
// written next to the stored files.
const indexFileName = "registry.msgpack"

// Store defines the interface for the file registry.
type Store interface {
	Save(name, mimeType string, r io.Reader) (*models.StoredFile, error)
	SaveBytes(name, mimeType string, data []byte) (*models.StoredFile, error)
	Get(id string) (*models.StoredFile, error)
	Content(id string) ([]byte, error)
	List(limit int) ([]*models.StoredFile, error)
	Delete(id string) error
	Clear() error
	Rename(id, newName string) (*models.StoredFile, error)
	FilePath(id string) (string, error)
	SetStatus(id, status string)
}

// LocalStore implements Store on the local filesystem. File content lives
// under uploadDir keyed by id; metadata is kept in memory and snapshotted
// to a msgpack index after each mutation. Snapshot writes are best effort:
// a failed write is logged and the in-memory state stays authoritative.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.StoredFile
}

// NewLocalStore creates a LocalStore, loading any existing index snapshot.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	s := &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]*models.StoredFile),
	}
	s.loadIndex()
	return s, nil
}

// Save stores a file from a reader.
func (s *LocalStore) Save(name, mimeType string, r io.Reader) (*models.StoredFile, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.StoredFile{
		ID:         id,
		Name:       name,
		Size:       size,
		Type:       mimeType,
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}

	s.mu.Lock()
	s.files[id] = info
	s.persistIndexLocked()
	s.mu.Unlock()

	return info, nil
}

// SaveBytes stores a file from a byte slice.
func (s *LocalStore) SaveBytes(name, mimeType string, data []byte) (*models.StoredFile, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.StoredFile{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		Type:       mimeType,
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}

	s.mu.Lock()
	s.files[id] = info
	s.persistIndexLocked()
	s.mu.Unlock()

	return info, nil
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return info, nil
}

// Content returns the raw stored bytes for a file.
func (s *LocalStore) Content(id string) ([]byte, error) {
	s.mu.RLock()
	_, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return os.ReadFile(filepath.Join(s.uploadDir, id))
}

// List returns the most recent files, newest first.
func (s *LocalStore) List(limit int) ([]*models.StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.StoredFile
	for _, info := range s.files {
		list = append(list, info)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a file from the registry. A second delete of the same id
// reports not-found.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}

	path := filepath.Join(s.uploadDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	s.persistIndexLocked()

	return nil
}

// Clear empties the registry and removes all stored content.
func (s *LocalStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.files {
		path := filepath.Join(s.uploadDir, id)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fmt.Printf("[Registry] Failed to remove %s: %v\n", id, err)
		}
		delete(s.files, id)
	}
	s.persistIndexLocked()

	return nil
}

// Rename updates the display name of a file.
func (s *LocalStore) Rename(id, newName string) (*models.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	info.Name = newName
	s.persistIndexLocked()
	return info, nil
}

// FilePath returns the absolute path to a stored file.
func (s *LocalStore) FilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}
	return filepath.Join(s.uploadDir, id), nil
}

// SetStatus updates a file's processing status. Unknown ids are ignored.
func (s *LocalStore) SetStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.files[id]; ok {
		info.Status = status
		s.persistIndexLocked()
	}
}

// persistIndexLocked snapshots the metadata map. Caller holds s.mu.
// Errors are logged and swallowed; the registry keeps serving from memory.
func (s *LocalStore) persistIndexLocked() {
	list := make([]*models.StoredFile, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, info)
	}

	data, err := msgpack.Marshal(list)
	if err != nil {
		fmt.Printf("[Registry] Failed to encode index: %v\n", err)
		return
	}

	path := filepath.Join(s.uploadDir, indexFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Printf("[Registry] Failed to write index: %v\n", err)
	}
}

// loadIndex restores the metadata map from the snapshot, dropping entries
// whose content file no longer exists.
func (s *LocalStore) loadIndex() {
	path := filepath.Join(s.uploadDir, indexFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("[Registry] Failed to read index: %v\n", err)
		}
		return
	}

	var list []*models.StoredFile
	if err := msgpack.Unmarshal(data, &list); err != nil {
		fmt.Printf("[Registry] Failed to decode index, starting empty: %v\n", err)
		return
	}

	for _, info := range list {
		if _, err := os.Stat(filepath.Join(s.uploadDir, info.ID)); err != nil {
			continue
		}
		s.files[info.ID] = info
	}
}
