package fs

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/io/fs/file"
)

// MemoryFs keeps whole files in memory. Intended for tests.
type MemoryFs struct {
	mu    sync.Mutex
	files map[string]*[]byte
}

func NewMemoryFs() *MemoryFs {
	return &MemoryFs{files: make(map[string]*[]byte)}
}

func (m *MemoryFs) OpenFile(path string) (file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, errors.Wrap(cerr.ErrFileNotExist, path)
	}
	return file.NewMemoryFile(data), nil
}

func (m *MemoryFs) CreateFile(path string) (file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := new([]byte)
	m.files[path] = data
	return file.NewMemoryFile(data), nil
}

func (m *MemoryFs) List(prefix string) ([]FileEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []FileEntry
	for path := range m.files {
		if strings.HasPrefix(path, prefix) {
			entries = append(entries, FileEntry{Path: path})
		}
	}
	return entries, nil
}

func (m *MemoryFs) Exist(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *MemoryFs) DeleteFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}
