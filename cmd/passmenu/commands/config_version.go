package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/upgrade"
)

func init() {
	configCmd.AddCommand(configVersionCmd)
}

var configVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show which schema version the document declares",
	Long: `Show the schema version declared by the configuration document and
whether it can be upgraded to the version this build uses.

The document is only read; nothing is written.`,
	Args: cobra.NoArgs,
	RunE: runConfigVersion,
}

func runConfigVersion(cmd *cobra.Command, _ []string) error {
	path := resolvedPath()

	doc, _, err := config.ReadDocument(path)
	if err != nil {
		return classify(err)
	}

	declared, err := config.DetectVersion(doc)
	if err != nil {
		return classify(err)
	}

	var status string
	switch c := declared.Compare(schema.Latest); {
	case c == 0:
		status = okLabel.Sprint("up to date")
	case c > 0:
		status = errLabel.Sprint("newer than this build supports")
	default:
		_, report, err := upgrade.Migrate(cmd.Context(), declared, doc)
		if err != nil {
			return classify(err)
		}
		status = fmt.Sprintf("upgrade available (%d step(s)), run: passmenu config migrate", len(report.Steps))
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", path)
	fmt.Fprintf(tw, "declared:\t%s\n", declared)
	fmt.Fprintf(tw, "latest:\t%s\n", schema.Latest)
	fmt.Fprintf(tw, "status:\t%s\n", status)
	return tw.Flush()
}
