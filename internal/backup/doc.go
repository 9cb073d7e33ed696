// Package backup keeps copies of the passmenu configuration document so a
// migration that rewrites it can be undone.
//
// Each backup is a timestamped directory under the backup root
// (paths.BackupDir, normally ~/.config/passmenu/backups):
//
//	backups/
//	└── 20260123T100712/
//	    ├── manifest.json
//	    └── config.yaml
//
// The manifest records the original location, permissions, SHA256 hash and
// the config-version the file declared. [Manager.Restore] refuses to restore
// a copy whose hash no longer matches.
//
//	mgr := backup.NewManager()
//	m, err := mgr.Backup("~/.config/passmenu/config.yaml", "0.1")
//	...
//	_, err = mgr.Restore(m.ID)
//
// Backup prunes everything beyond the retention count (5 by default).
// [Session] wraps a Manager so a single command backs a file up only once.
package backup
