package config

import (
	"context"

	"github.com/thoreinstein/passmenu/internal/backup"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/pkg/fileutil"
)

// Backuper copies a file before it is overwritten. *backup.Session
// satisfies it.
type Backuper interface {
	EnsureBackedUp(path, schemaVersion string) (*backup.Manifest, error)
}

// Save writes res.Tree back to res.Path in its original format. When b is
// non-nil and a file exists at the path, it is backed up first and the
// backup's manifest is returned. An existing file keeps its permissions.
func (l *Loader) Save(ctx context.Context, res *Result, b Backuper) (*backup.Manifest, error) {
	if res == nil || res.Tree == nil {
		return nil, errors.New("nothing to save")
	}
	logger := l.log(ctx)

	data, err := Encode(res.Format, res.Tree)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", res.Path)
	}

	var manifest *backup.Manifest
	if b != nil && Exists(res.Path) {
		manifest, err = b.EnsureBackedUp(res.Path, res.Version.String())
		if manifest == nil {
			if err == nil {
				err = errors.New("backup returned no manifest")
			}
			return nil, errors.WithHint(
				errors.Wrap(err, "backing up config"),
				"the file was not changed",
			)
		}
		if err != nil {
			logger.Warn("backup created but pruning failed", "error", err)
		}
		logger.Info("backed up config", "path", res.Path, "backup", manifest.ID)
	}

	perm := fileutil.PreservedPerm(res.Path, fileutil.DefaultFilePerm)
	if err := fileutil.AtomicWriteFile(res.Path, data, perm); err != nil {
		return manifest, errors.Wrapf(err, "writing %s", res.Path)
	}
	logger.Info("wrote config", "path", res.Path, "version", res.Report.To.String())

	return manifest, nil
}
