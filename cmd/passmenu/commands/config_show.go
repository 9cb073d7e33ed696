package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/errors"
)

var (
	showPaths     bool
	showEffective bool
	showFormat    string
)

func init() {
	configShowCmd.Flags().BoolVar(&showPaths, "paths", false, "print the dotted path of every value instead of the document")
	configShowCmd.Flags().BoolVar(&showEffective, "effective", false, "print the typed configuration, including defaults and environment overrides")
	configShowCmd.Flags().StringVar(&showFormat, "format", "", "output format: yaml, toml (default: the file's format)")
	configCmd.AddCommand(configShowCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the document as the application sees it",
	Long: `Load the configuration document, upgrading it in memory if needed, and
print the result. The file on disk is not modified, except that a missing
document is created from the default.`,
	Example: `  # Print the upgraded document
  passmenu config show

  # List every key
  passmenu config show --paths

  # Include defaults and PASSMENU_* overrides
  passmenu config show --effective`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if showPaths && showEffective {
		return errors.NewUserError(errors.New("--paths and --effective are mutually exclusive"), "pick one of --paths or --effective")
	}

	res, err := load(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if showPaths {
		for _, p := range res.Tree.Paths() {
			fmt.Fprintln(w, p)
		}
		return nil
	}

	if showEffective {
		data, err := yaml.Marshal(res.Config)
		if err != nil {
			return errors.Wrap(err, "encoding configuration")
		}
		_, err = w.Write(data)
		return err
	}

	format := res.Format
	if showFormat != "" {
		format = config.Format(strings.ToLower(showFormat))
	}
	data, err := config.Encode(format, res.Tree)
	if err != nil {
		return errors.NewUserError(err, "use --format yaml or --format toml")
	}
	_, err = w.Write(data)
	return err
}
