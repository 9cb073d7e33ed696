package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/paths"
	"github.com/thoreinstein/passmenu/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const idLayout = "20060102T150405"

// Manager creates, lists, restores and prunes config file backups.
type Manager struct {
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets how many backups Backup keeps. Non-positive values
// are ignored.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a Manager rooted at paths.BackupDir unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the root backup directory.
func (m *Manager) Dir() string {
	return m.rootDir
}

// Backup copies the file at path into a new timestamped backup directory,
// records its hash in a manifest and prunes backups beyond the retention
// count. schemaVersion is stored verbatim and may be empty.
func (m *Manager) Backup(path, schemaVersion string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	src, err := filepath.Abs(paths.ExpandHome(path))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.Newf("%s is a directory", path)
	}

	if err := paths.EnsureDir(m.rootDir, 0); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}

	id, dir, err := m.reserveDir()
	if err != nil {
		return nil, err
	}

	name := filepath.Base(src)
	hash, mode, err := copyFile(src, filepath.Join(dir, name))
	if err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrapf(err, "backing up %s", path)
	}

	manifest := &Manifest{
		Version:       ManifestVersion,
		CreatedAt:     m.now().UTC(),
		OriginalPath:  src,
		FileName:      name,
		SHA256Hash:    hash,
		Mode:          mode,
		SchemaVersion: schemaVersion,
		AppVersion:    Version,
		ID:            id,
	}

	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, ManifestFileName), manifest); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}

	return manifest, nil
}

// reserveDir creates a fresh backup directory named after the current
// second, adding a numeric suffix when that name is taken.
func (m *Manager) reserveDir() (string, string, error) {
	base := m.now().Format(idLayout)
	for i := 0; i < 100; i++ {
		id := base
		if i > 0 {
			id = base + "-" + strconv.Itoa(i)
		}
		dir := filepath.Join(m.rootDir, id)
		err := os.Mkdir(dir, paths.DefaultDirPerm)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
	}
	return "", "", errors.Newf("too many backups created at %s", base)
}

// Restore copies the file from backup id back to its original location
// after verifying its hash.
func (m *Manager) Restore(id string) (*Manifest, error) {
	manifest, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	src := filepath.Join(m.rootDir, id, manifest.FileName)
	hash, err := hashFile(src)
	if err != nil {
		return nil, errors.Wrapf(err, "reading backup file %s", manifest.FileName)
	}
	if hash != manifest.SHA256Hash {
		return nil, errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", manifest.FileName)
	}

	if err := paths.EnsureDir(filepath.Dir(manifest.OriginalPath), 0); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", manifest.OriginalPath)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, errors.Wrapf(err, "reading backup file %s", manifest.FileName)
	}
	if err := fileutil.AtomicWriteFile(manifest.OriginalPath, data, manifest.Mode.Perm()); err != nil {
		return nil, errors.Wrapf(err, "restoring %s", manifest.OriginalPath)
	}

	return manifest, nil
}

// List returns all backups, newest first.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(entry.Name())
		if err != nil {
			// Skip directories without a readable manifest.
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})

	return manifests, nil
}

// Prune removes all but the keep most recent backups.
func (m *Manager) Prune(keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List()
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		if err := os.RemoveAll(filepath.Join(m.rootDir, manifests[i].ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}

	return nil
}

// Get returns the manifest for backup id.
func (m *Manager) Get(id string) (*Manifest, error) {
	if id == "" {
		return nil, errors.New("backup ID is required")
	}
	if id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, errors.Newf("invalid backup ID %q", id)
	}

	data, err := os.ReadFile(filepath.Join(m.rootDir, id, ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = id
	return &manifest, nil
}

// compareIDs orders IDs that share a timestamp by their numeric suffix.
func compareIDs(a, b string) int {
	as, an := splitID(a)
	bs, bn := splitID(b)
	if c := strings.Compare(as, bs); c != 0 {
		return c
	}
	return an - bn
}

func splitID(id string) (string, int) {
	base, suffix, ok := strings.Cut(id, "-")
	if !ok {
		return id, 0
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return id, 0
	}
	return base, n
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst, returning the SHA256 hash and mode of src.
// The copy gets the source's permissions.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}

	h := sha256.New()
	if _, err := fileutil.AtomicWriteFrom(dst, io.TeeReader(srcFile, h), srcInfo.Mode().Perm()); err != nil {
		return "", 0, errors.Wrap(err, "copying file")
	}

	return hex.EncodeToString(h.Sum(nil)), srcInfo.Mode(), nil
}
