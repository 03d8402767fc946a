package testing

import (
	"io/fs"
	"path"
	"sync"
	"testing/fstest"
	"time"
)

// MemoryFS is a mutable fs.FS for template sources. Directories exist
// implicitly for every file written below them. It is safe for concurrent
// use.
type MemoryFS struct {
	mu    sync.RWMutex
	files fstest.MapFS
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{files: fstest.MapFS{}}
}

// WriteFile stores a copy of data under name.
func (m *MemoryFS) WriteFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(name)] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    0o644,
		ModTime: time.Now(),
	}
}

// Remove forgets name. Removing an unknown file does nothing.
func (m *MemoryFS) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path.Clean(name))
}

// snapshot copies the file table so that reads never race with writes.
func (m *MemoryFS) snapshot() fstest.MapFS {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := make(fstest.MapFS, len(m.files))
	for name, file := range m.files {
		files[name] = file
	}
	return files
}

func (m *MemoryFS) Open(name string) (fs.File, error) {
	return m.snapshot().Open(name)
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	return m.snapshot().ReadFile(name)
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return m.snapshot().ReadDir(name)
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	return m.snapshot().Stat(name)
}

func (m *MemoryFS) Glob(pattern string) ([]string, error) {
	return m.snapshot().Glob(pattern)
}
