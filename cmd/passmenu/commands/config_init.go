package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/backup"
	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/errors"
)

var initForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing document (it is backed up first)")
	configCmd.AddCommand(configInitCmd)
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration document",
	Long: `Write the default configuration document at the configured location.
The format follows the file extension of --config.`,
	Example: `  passmenu config init
  passmenu config init --config ~/passmenu.toml
  passmenu config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := resolvedPath()

	format, err := config.FormatFor(path)
	if err != nil {
		return classify(err)
	}

	if config.Exists(path) {
		if !initForce {
			printf(cmd, "Configuration already exists at %s\n", path)
			printf(cmd, "Use --force to overwrite\n")
			return nil
		}
		declared := ""
		if doc, _, err := config.ReadDocument(path); err == nil {
			if v, err := config.DetectVersion(doc); err == nil {
				declared = v.String()
			}
		}
		manifest, err := backup.NewSession(backupManager()).EnsureBackedUp(path, declared)
		if manifest == nil {
			return errors.NewSystemError(err, "the existing file was left unchanged")
		}
		printf(cmd, "Backed up existing configuration as %s\n", manifest.ID)
	}

	if _, err := config.WriteDefault(path, format); err != nil {
		return errors.NewSystemError(err, "check that the config directory is writable")
	}
	printf(cmd, "Created %s\n", path)
	return nil
}
