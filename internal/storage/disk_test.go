package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesUnderWorkOrderDirectory(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStorage(root)

	rel, err := store.Save("wo-1", "before.jpg", []byte("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "wo-1", filepath.Dir(rel))
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestSaveNeverOverwrites(t *testing.T) {
	store := NewDiskStorage(t.TempDir())

	first, err := store.Save("wo-1", "photo.jpg", []byte("a"))
	require.NoError(t, err)
	second, err := store.Save("wo-1", "photo.jpg", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSanitizeStripsPathComponents(t *testing.T) {
	assert.Equal(t, "evil.jpg", sanitize("../../evil.jpg"))
	assert.Equal(t, "photo", sanitize(""))
	assert.Equal(t, "my_photo.jpg", sanitize("my photo.jpg"))
}
