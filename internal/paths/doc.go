// Package paths resolves where passmenu keeps its configuration document.
//
// The directory follows the XDG Base Directory Specification through
// github.com/adrg/xdg and can be overridden with PASSMENU_CONFIG_DIR:
//
//	paths.ConfigFile() // ~/.config/passmenu/config.yaml on Linux
//	paths.BackupDir()  // ~/.config/passmenu/backups
package paths
