package importer

import (
	"io"
	"os"
	"path/filepath"
)

// ArchiveKey is the fixed storage key the fetched archive lives under.
const ArchiveKey = "postcodes.zip"

// Stage keeps the downloaded archive on local disk so extraction can run
// against a previous fetch.
type Stage struct {
	basePath string
}

func NewStage(basePath string) *Stage {
	return &Stage{basePath: basePath}
}

func (s *Stage) Path() string {
	return filepath.Join(s.basePath, ArchiveKey)
}

func (s *Stage) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Put writes the archive through a temp file and renames it into place, so
// a failed download never clobbers the staged copy.
func (s *Stage) Put(reader io.Reader) (int64, error) {
	tempFile, err := os.CreateTemp(s.basePath, "archive-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tempFile.Name())

	written, err := io.Copy(tempFile, reader)
	if err != nil {
		tempFile.Close()
		return 0, err
	}
	tempFile.Close()

	if err := os.Rename(tempFile.Name(), s.Path()); err != nil {
		return 0, err
	}
	return written, nil
}
