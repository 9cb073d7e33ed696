package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/backup"
	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/errors"
)

var (
	migrateDryRun   bool
	migrateNoBackup bool
)

func init() {
	configMigrateCmd.Flags().BoolVarP(&migrateDryRun, "dry-run", "n", false, "print the steps and the upgraded document without writing")
	configMigrateCmd.Flags().BoolVar(&migrateNoBackup, "no-backup", false, "do not back up the file before rewriting it")
	configCmd.AddCommand(configMigrateCmd)
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the document on disk to the latest schema",
	Long: `Upgrade the configuration document to the latest schema version and
write it back in place.

The previous file is backed up first; list backups with
'passmenu config backups' and undo with 'passmenu config restore <id>'.
Comments in the original file are not preserved.`,
	Example: `  # Preview
  passmenu config migrate --dry-run

  # Apply
  passmenu config migrate`,
	Args: cobra.NoArgs,
	RunE: runConfigMigrate,
}

func runConfigMigrate(cmd *cobra.Command, _ []string) error {
	loader := newLoader(cmd, config.WithCreateMissing(false), config.WithEnv(false))
	res, err := loader.Load(cmd.Context(), configPath)
	if err != nil {
		return classify(err)
	}

	if !res.Report.Upgraded() {
		printf(cmd, "%s is already at version %s\n", res.Path, res.Version)
		return nil
	}

	w := cmd.OutOrStdout()
	if !quiet {
		fmt.Fprintf(w, "Upgrading %s from %s to %s:\n", res.Path, res.Report.From, res.Report.To)
		for _, step := range res.Report.Steps {
			fmt.Fprintf(w, "  %s -> %s  %s\n", step.From, step.To, step.Description)
		}
	}

	if migrateDryRun {
		data, err := config.Encode(res.Format, res.Tree)
		if err != nil {
			return errors.Wrap(err, "encoding upgraded document")
		}
		fmt.Fprintln(w)
		_, err = w.Write(data)
		return err
	}

	var b config.Backuper
	if !migrateNoBackup {
		b = backup.NewSession(backupManager())
	}

	manifest, err := loader.Save(cmd.Context(), res, b)
	if err != nil {
		return classify(err)
	}
	if quiet {
		return nil
	}

	okLabel.Fprint(w, "Upgraded")
	fmt.Fprintf(w, " %s to version %s\n", res.Path, res.Report.To)
	if manifest != nil {
		fmt.Fprint(w, "Backup: ")
		idLabel.Fprintln(w, manifest.ID)
	}
	return nil
}
