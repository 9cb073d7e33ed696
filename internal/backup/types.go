package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the number of backups kept when none is configured.
const DefaultRetentionCount = 5

// ManifestFileName is the name of the metadata file inside each backup.
const ManifestFileName = "manifest.json"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates the stored copy no longer matches the
	// SHA256 hash recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one backup. It is stored as manifest.json next to the
// copied file.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// OriginalPath is the absolute path the file was copied from and is
	// restored to.
	OriginalPath string `json:"original_path"`

	// FileName is the name of the copy within the backup directory.
	FileName string `json:"file_name"`

	SHA256Hash string      `json:"sha256_hash"`
	Mode       fs.FileMode `json:"mode"`

	// SchemaVersion is the config-version the file declared when it was
	// backed up, if the caller supplied one.
	SchemaVersion string `json:"schema_version,omitempty"`

	// AppVersion is the passmenu build that created the backup.
	AppVersion string `json:"app_version"`

	// ID is the backup directory name (20260123T100712, with a -N suffix
	// when several backups land in the same second). It is not stored.
	ID string `json:"-"`
}
