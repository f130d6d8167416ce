// Package storage holds the append-only object store for report
// photos. The pack offers no object-storage SDK, so the default
// implementation writes to a local directory tree; the service layer
// only sees the PhotoStorage interface.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStorage stores photo objects under a root directory, one
// subdirectory per work order. Objects are never overwritten.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) *DiskStorage {
	return &DiskStorage{root: root}
}

// Save writes the object and returns its storage path relative to the
// root. The timestamp prefix keeps paths unique per upload.
func (s *DiskStorage) Save(workOrderID, filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitize(filename))
	rel := filepath.Join(workOrderID, name)
	abs := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create photo directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return rel, nil
}

// sanitize strips path separators and awkward characters from an
// uploaded filename.
func sanitize(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(" ", "_", "\\", "_", "..", "_")
	name = replacer.Replace(name)
	if name == "" || name == "." {
		name = "photo"
	}
	return name
}
