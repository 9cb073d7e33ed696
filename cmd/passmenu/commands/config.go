package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect, upgrade and back up the configuration document",
	Long: `Inspect, upgrade and back up the passmenu configuration document.

The document lives at $XDG_CONFIG_HOME/passmenu/config.yaml unless
--config or PASSMENU_CONFIG_DIR says otherwise. YAML (.yaml, .yml) and
TOML (.toml) documents are supported.`,
	Example: `  passmenu config path
  passmenu config version
  passmenu config show --paths
  passmenu config get gpg.gpg-agent.preload
  passmenu config migrate --dry-run`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of the configuration document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write([]byte(resolvedPath() + "\n"))
		return err
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}
