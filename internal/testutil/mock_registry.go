// mock_registry.go - Mock registry implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/fsd-console/backend/internal/models"
)

// MockRegistry implements registry.Store for testing
type MockRegistry struct {
	files    map[string]*models.StoredFile
	fileData map[string][]byte
	mu       sync.RWMutex
	nextID   int

	// SaveErr forces Save/SaveBytes to fail when set
	SaveErr error
}

// NewMockRegistry creates a new mock registry
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		files:    make(map[string]*models.StoredFile),
		fileData: make(map[string][]byte),
	}
}

func (m *MockRegistry) Save(name, mimeType string, r io.Reader) (*models.StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, mimeType, data)
}

func (m *MockRegistry) SaveBytes(name, mimeType string, data []byte) (*models.StoredFile, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	file := &models.StoredFile{
		ID:         fmt.Sprintf("test-file-%d", m.nextID),
		Name:       name,
		Size:       int64(len(data)),
		Type:       mimeType,
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}

	m.files[file.ID] = file
	m.fileData[file.ID] = data
	return file, nil
}

func (m *MockRegistry) Get(id string) (*models.StoredFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return file, nil
}

func (m *MockRegistry) Content(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

func (m *MockRegistry) List(limit int) ([]*models.StoredFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.StoredFile, 0, len(m.files))
	for _, file := range m.files {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockRegistry) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return errors.New("file not found")
	}
	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockRegistry) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files = make(map[string]*models.StoredFile)
	m.fileData = make(map[string][]byte)
	return nil
}

func (m *MockRegistry) Rename(id, newName string) (*models.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	file.Name = newName
	return file, nil
}

func (m *MockRegistry) FilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", errors.New("file not found")
	}
	return "/mock/" + id, nil
}

func (m *MockRegistry) SetStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if file, ok := m.files[id]; ok {
		file.Status = status
	}
}

// Count returns the number of stored files
func (m *MockRegistry) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
