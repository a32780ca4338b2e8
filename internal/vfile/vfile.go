// Package vfile models the virtual files produced by config serialization:
// a path plus byte contents, handed to a Writer that performs the actual
// file-system mutation.
package vfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// File is a single pending write.
type File struct {
	Path     string
	Contents []byte
	// Perm is the file mode used on creation. Zero means 0644.
	Perm os.FileMode
}

// Writer persists virtual files.
type Writer interface {
	Write(ctx context.Context, files ...File) error
}

// DiskWriter writes files to the local file system, creating parent
// directories as needed.
type DiskWriter struct{}

func (DiskWriter) Write(_ context.Context, files ...File) error {
	for _, f := range files {
		if f.Path == "" {
			return fmt.Errorf("virtual file has no path")
		}
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		perm := f.Perm
		if perm == 0 {
			perm = 0o644
		}
		if err := os.WriteFile(f.Path, f.Contents, perm); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
	}
	return nil
}

// MemWriter collects writes in memory. Test helper.
type MemWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemWriter() *MemWriter {
	return &MemWriter{files: make(map[string][]byte)}
}

func (m *MemWriter) Write(_ context.Context, files ...File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range files {
		if f.Path == "" {
			return fmt.Errorf("virtual file has no path")
		}
		m.files[f.Path] = append([]byte(nil), f.Contents...)
	}
	return nil
}

// Get returns the contents written for path.
func (m *MemWriter) Get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	return b, ok
}

// Paths returns every written path, sorted.
func (m *MemWriter) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
