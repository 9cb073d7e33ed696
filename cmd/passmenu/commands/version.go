package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	build "github.com/thoreinstein/passmenu/cmd"
	"github.com/thoreinstein/passmenu/internal/schema"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit and build date of passmenu and the configuration schema versions it understands.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		known := make([]string, 0, len(schema.Known()))
		for _, v := range schema.Known() {
			known = append(known, v.String())
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "passmenu version %s\n", build.Version)
		fmt.Fprintf(w, "  commit: %s\n", build.Commit)
		fmt.Fprintf(w, "  built:  %s\n", build.Date)
		fmt.Fprintf(w, "  config: %s (reads %s)\n", schema.Latest, strings.Join(known, ", "))
	},
}
