package filestore

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(strings.NewReader("hello"), "report.pdf")
	require.NoError(t, err)

	// Stored under a random name, original extension kept.
	assert.Equal(t, ".pdf", filepath.Ext(path))
	assert.NotContains(t, filepath.Base(path), "report")

	f, err := store.Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSaveUniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(strings.NewReader("a"), "same.txt")
	require.NoError(t, err)
	second, err := store.Save(strings.NewReader("b"), "same.txt")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRemoveMissingFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(strings.NewReader("x"), "gone.txt")
	require.NoError(t, err)
	require.NoError(t, store.Remove(path))

	// Removing twice is not an error.
	assert.NoError(t, store.Remove(path))
}
