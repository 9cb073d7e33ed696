package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// MaxFileSize bounds how much of a config document is read (1MB). A real
// document is a few hundred bytes; anything near this is not a config file.
const MaxFileSize int64 = 1 << 20

// ErrFileTooLarge indicates that a file exceeded its read limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileWithLimit reads path, refusing files larger than MaxFileSize.
// A missing file yields an error matching fs.ErrNotExist.
func ReadFileWithLimit(path string) ([]byte, error) {
	return ReadFileLimit(path, MaxFileSize)
}

// ReadFileLimit reads at most limit bytes from path.
func ReadFileLimit(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, tooLarge(path, limit)
	}

	// Stat can under-report for special files, so bound the read as well.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if int64(len(data)) > limit {
		return nil, tooLarge(path, limit)
	}
	return data, nil
}

func tooLarge(path string, limit int64) error {
	return errors.WithHintf(
		errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit),
		"check that %s is a passmenu configuration file", path,
	)
}
