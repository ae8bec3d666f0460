package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var csvContent = []byte(`"AB10 1AB","10","394251","806376","S92000003"
"AB10 1AF","10","394181","806429","S92000003"
"AB10 1AG","10","394251","806376","S92000003"
"AB10 1AH","10","394371","806359","S92000003"
`)

// pngHeader is enough for content sniffing to reject the file.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func writeZip(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "postcodes.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractOnlyExpectedEntries(t *testing.T) {
	zipPath := writeZip(t, map[string][]byte{
		"Data/CSV/ab.csv":   csvContent,
		"Data/CSV/notes.txt": []byte("not a csv"),
		"stray.csv":         csvContent,
		"Doc/readme.txt":    []byte("readme"),
	})
	destDir := t.TempDir()

	files, err := NewExtractor(destDir).Extract(zipPath)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(destDir, "ab.csv"), files[0])

	// Entries outside Data/CSV/ must never reach the destination.
	_, err = os.Stat(filepath.Join(destDir, "stray.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(destDir, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractDeletesSpoofedCSV(t *testing.T) {
	zipPath := writeZip(t, map[string][]byte{
		"Data/CSV/ab.csv":   csvContent,
		"Data/CSV/fake.csv": pngHeader,
	})
	destDir := t.TempDir()

	files, err := NewExtractor(destDir).Extract(zipPath)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(destDir, "ab.csv"), files[0])

	_, err = os.Stat(filepath.Join(destDir, "fake.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractFlattensNestedEntries(t *testing.T) {
	zipPath := writeZip(t, map[string][]byte{
		"Data/CSV/nested/cd.csv": csvContent,
	})
	destDir := t.TempDir()

	files, err := NewExtractor(destDir).Extract(zipPath)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(destDir, "cd.csv"), files[0])
}

func TestExtractEmptyArchive(t *testing.T) {
	zipPath := writeZip(t, map[string][]byte{
		"Doc/licence.txt": []byte("licence"),
	})

	files, err := NewExtractor(t.TempDir()).Extract(zipPath)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestExtractCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := NewExtractor(t.TempDir()).Extract(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
}
