// Package fileutil provides atomic writes and size-limited reads.
package fileutil

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// DefaultFilePerm is the mode for new config documents and backup
// manifests. They can name key locations, so they stay private.
const DefaultFilePerm os.FileMode = 0o600

const tempPattern = ".passmenu-atomic-*.tmp"

// AtomicWriteFile replaces path with data. Readers see either the old file
// or the new one, never a partial write. The parent directory must exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	_, err := AtomicWriteFrom(path, bytes.NewReader(data), perm)
	return err
}

// AtomicWriteFrom streams r into path with the same guarantees as
// AtomicWriteFile and returns the number of bytes written.
func AtomicWriteFrom(path string, r io.Reader, perm os.FileMode) (int64, error) {
	dir := filepath.Dir(path)

	// Same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return 0, errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return n, errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		return n, errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Sync(); err != nil {
		return n, errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return n, errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return n, errors.Wrap(err, "renaming temp file")
	}
	committed = true

	syncDir(dir)
	return n, nil
}

// syncDir flushes the rename to disk. Failures are ignored: the data is
// already in place and some filesystems refuse to fsync a directory.
func syncDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
}

// PreservedPerm returns the permission bits of the file at path, or
// fallback when there is no such file. Rewrites use it to keep a mode the
// user chose.
func PreservedPerm(path string, fallback os.FileMode) os.FileMode {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fallback
	}
	return info.Mode().Perm()
}

// AtomicWriteJSON writes v as two-space indented JSON with a trailing
// newline, using DefaultFilePerm.
func AtomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	return AtomicWriteFile(path, append(data, '\n'), DefaultFilePerm)
}

