package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrExtraction wraps failures to open or read the archive container.
var ErrExtraction = errors.New("extraction failed")

const (
	// dataDir is the only archive subdirectory entries are accepted from.
	dataDir = "Data/CSV/"
	// maxEntrySize caps a single uncompressed member (zip-bomb guard).
	maxEntrySize = 256 << 20
)

// Extractor pulls the expected CSV members of a postcode archive into a
// working directory.
type Extractor struct {
	destDir string
}

func NewExtractor(destDir string) *Extractor {
	return &Extractor{destDir: destDir}
}

// Extract walks the archive and extracts entries under Data/CSV/ with a
// .csv suffix to flattened filenames. An extracted file whose sniffed
// content is not text/csv is deleted and not counted. Everything else in
// the archive is skipped without extraction. Returns the surviving paths;
// an empty result is not an error.
func (e *Extractor) Extract(zipPath string) ([]string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer reader.Close()

	var extracted []string
	for _, entry := range reader.File {
		if !strings.HasPrefix(entry.Name, dataDir) || !strings.HasSuffix(entry.Name, ".csv") {
			continue
		}
		if entry.UncompressedSize64 > maxEntrySize {
			continue
		}

		dest := filepath.Join(e.destDir, filepath.Base(entry.Name))
		if err := writeEntry(entry, dest); err != nil {
			os.Remove(dest)
			continue
		}

		mime, err := mimetype.DetectFile(dest)
		if err != nil || !mime.Is("text/csv") {
			os.Remove(dest)
			continue
		}

		extracted = append(extracted, dest)
	}

	return extracted, nil
}

func writeEntry(entry *zip.File, dest string) error {
	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	// LimitReader backs up the header size check: a spoofed header cannot
	// make the entry expand past the cap.
	_, err = io.Copy(out, io.LimitReader(in, maxEntrySize))
	return err
}
