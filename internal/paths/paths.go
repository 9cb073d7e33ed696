package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// AppName names the application directory under the XDG base directories.
const AppName = "passmenu"

// ConfigFileName is the name of the configuration document.
const ConfigFileName = "config.yaml"

// EnvConfigDir overrides the directory holding the configuration document.
const EnvConfigDir = "PASSMENU_CONFIG_DIR"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the permission for newly created directories (private:
// the document can name gpg homes and key locations).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DefaultDirPerm is used.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return errors.Wrapf(os.MkdirAll(path, perm), "creating %s", path)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns the passmenu configuration directory, honouring
// PASSMENU_CONFIG_DIR.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the default location of the configuration document.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// Resolve returns explicit (with ~ expanded) when set, otherwise ConfigFile().
func Resolve(explicit string) string {
	if explicit != "" {
		return ExpandHome(explicit)
	}
	return ConfigFile()
}

// BackupDir returns the directory holding copies of documents replaced by
// an upgrade write-back.
func BackupDir() string {
	return filepath.Join(ConfigDir(), "backups")
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ExpandHome expands a leading ~ to the user's home directory. Paths without
// one, and paths that cannot be expanded, are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := ResolveHome()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
