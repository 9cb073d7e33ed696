package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/editor"
)

// editStreams is the terminal handed to the editor.
var editStreams = editor.Stdio

func init() {
	configCmd.AddCommand(configEditCmd)
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration document in $EDITOR",
	Long: `Open the configuration document in your editor, then check the result.

Uses $EDITOR, then $VISUAL, then nano or vi. A missing document is created
from the default first. After the editor exits the document is loaded
again and any problems are reported.`,
	Example: `  passmenu config edit
  EDITOR="code --wait" passmenu config edit`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	// Load first so a missing document is created and a broken one is
	// reported before the editor opens.
	res, err := load(cmd)
	if err != nil {
		return err
	}

	if err := editor.Open(cmd.Context(), res.Path, editStreams()); err != nil {
		return classify(err)
	}

	after, err := newLoader(cmd, config.WithCreateMissing(false)).Load(cmd.Context(), res.Path)
	if err != nil {
		return classify(err)
	}

	problems := config.Validate(after.Config)
	for _, p := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", p)
	}
	if after.Status == config.StatusUpgraded {
		printf(cmd, "%s declares version %s; run: passmenu config migrate\n", after.Path, after.Version)
		return nil
	}
	if len(problems) == 0 {
		printf(cmd, "%s is valid\n", after.Path)
	}
	return nil
}
