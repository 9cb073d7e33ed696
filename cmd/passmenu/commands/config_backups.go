package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/backup"
	"github.com/thoreinstein/passmenu/internal/errors"
)

var backupsJSON bool

func init() {
	configBackupsCmd.Flags().BoolVar(&backupsJSON, "json", false, "output in JSON format")
	configCmd.AddCommand(configBackupsCmd)
	configCmd.AddCommand(configRestoreCmd)
}

var configBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backups of the configuration document",
	Long: `List the backups taken before passmenu rewrote the configuration
document, newest first.`,
	Example: `  passmenu config backups
  passmenu config backups --json

  See Also:
    passmenu config restore - Restore from a backup`,
	Args: cobra.NoArgs,
	RunE: runConfigBackups,
}

// backupInfoOutput represents a single backup in JSON output.
type backupInfoOutput struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	OriginalPath  string    `json:"original_path"`
	SchemaVersion string    `json:"schema_version,omitempty"`
	AppVersion    string    `json:"app_version"`
}

func runConfigBackups(cmd *cobra.Command, _ []string) error {
	mgr := backupManager()
	w := cmd.OutOrStdout()

	manifests, err := mgr.List()
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.NewSystemError(err, "check the permissions of "+mgr.Dir())
	}

	if backupsJSON {
		out := make([]backupInfoOutput, len(manifests))
		for i, m := range manifests {
			out[i] = backupInfoOutput{
				ID:            m.ID,
				CreatedAt:     m.CreatedAt,
				OriginalPath:  m.OriginalPath,
				SchemaVersion: m.SchemaVersion,
				AppVersion:    m.AppVersion,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(manifests) == 0 {
		fmt.Fprintln(w, "No backups available")
		fmt.Fprintln(w, "Backups are created before passmenu config migrate or init --force rewrites the file.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSCHEMA\tFILE")
	for _, m := range manifests {
		schema := m.SchemaVersion
		if schema == "" {
			schema = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			m.ID,
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			schema,
			m.OriginalPath)
	}
	return tw.Flush()
}

var configRestoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore the configuration document from a backup",
	Long: `Restore the configuration document from a backup. The current file is
backed up first, so a restore can itself be undone.`,
	Example: `  passmenu config backups
  passmenu config restore 20260123T100712`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigRestore,
}

func runConfigRestore(cmd *cobra.Command, args []string) error {
	id := args[0]
	mgr := backupManager()

	target, err := mgr.Get(id)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(err, "list backups with: passmenu config backups")
		}
		return errors.NewUserError(err, "backup IDs look like 20260123T100712")
	}

	// Keep every existing backup while saving the current file, so the
	// target cannot be pruned before it is restored.
	if _, err := backup.NewManager(
		backup.WithBackupDir(mgr.Dir()),
		backup.WithRetentionCount(countBackups(mgr)+1),
	).Backup(target.OriginalPath, ""); err == nil {
		printf(cmd, "Backed up current configuration first\n")
	}

	restored, err := mgr.Restore(id)
	if err != nil {
		if errors.Is(err, backup.ErrBackupCorrupted) {
			return errors.NewUserError(err, "choose another backup")
		}
		return errors.NewSystemError(err, "check the permissions of "+target.OriginalPath)
	}

	printf(cmd, "Restored %s from backup %s\n", restored.OriginalPath, restored.ID)
	return nil
}

func countBackups(mgr *backup.Manager) int {
	list, err := mgr.List()
	if err != nil {
		return 0
	}
	return len(list)
}
