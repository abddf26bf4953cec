package koreader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("return {}"), 0644))
}

func TestFindMetadataFiles(t *testing.T) {
	root := t.TempDir()

	want := []string{
		filepath.Join(root, "Author A", "Book One.sdr", "metadata.epub.lua"),
		filepath.Join(root, "Author B", "Series", "Book Two.sdr", "metadata.epub.lua"),
		filepath.Join(root, "Loose.sdr", "metadata.epub.lua"),
	}
	for _, path := range want {
		writeFile(t, path)
	}

	// Near misses
	writeFile(t, filepath.Join(root, "Paper.sdr", "metadata.pdf.lua"))
	writeFile(t, filepath.Join(root, "Old.sdr", "metadata.epub.lua.old"))
	writeFile(t, filepath.Join(root, "Book One.epub"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Dir.sdr", "metadata.epub.lua"), 0755))

	files, err := FindMetadataFiles(root, "metadata.epub.lua")

	require.NoError(t, err)
	assert.Equal(t, want, files)
}

func TestFindMetadataFiles_CustomName(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Paper.sdr", "metadata.pdf.lua")
	writeFile(t, path)
	writeFile(t, filepath.Join(root, "Book.sdr", "metadata.epub.lua"))

	files, err := FindMetadataFiles(root, "metadata.pdf.lua")

	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindMetadataFiles_Empty(t *testing.T) {
	files, err := FindMetadataFiles(t.TempDir(), "metadata.epub.lua")

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindMetadataFiles_MissingRoot(t *testing.T) {
	_, err := FindMetadataFiles(filepath.Join(t.TempDir(), "unplugged"), "metadata.epub.lua")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindMetadataFiles_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, path)

	_, err := FindMetadataFiles(path, "metadata.epub.lua")

	assert.Error(t, err)
}
