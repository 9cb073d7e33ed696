package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
	"github.com/thoreinstein/passmenu/internal/tree"
)

func init() {
	configCmd.AddCommand(configGetCmd)
}

var configGetCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Print the value at a dotted path",
	Long: `Print the value stored at a dotted path of the upgraded document.
Nested sections are printed as YAML.

Without a path, and when attached to a terminal, pick a key interactively.`,
	Example: `  passmenu config get gpg.gpg-path
  passmenu config get gpg

  # Choose interactively
  passmenu config get`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigGet,
}

// interactive reports whether a picker can be shown.
var interactive = func() bool {
	return logging.IsTTY(os.Stdin) && logging.IsTTY(os.Stdout)
}

// pickPath asks the user to choose one of paths. It returns -1 when the
// user aborts.
var pickPath = func(paths []string, preview func(i int) string) (int, error) {
	idx, err := fuzzyfinder.Find(
		paths,
		func(i int) string { return paths[i] },
		fuzzyfinder.WithPromptString("config> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return preview(i)
		}),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return -1, nil
	}
	return idx, err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	res, err := load(cmd)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		if !interactive() {
			return errors.NewUserError(errors.New("no path given"),
				"pass a dotted path, e.g. passmenu config get gpg.gpg-path")
		}
		keys := res.Tree.Paths()
		if len(keys) == 0 {
			printf(cmd, "The document is empty.\n")
			return nil
		}
		idx, err := pickPath(keys, func(i int) string {
			return renderPath(res.Tree, keys[i])
		})
		if err != nil {
			return errors.Wrap(err, "interactive selection failed")
		}
		if idx < 0 {
			return nil
		}
		path = keys[idx]
	}

	value, ok, err := res.Tree.Get(path)
	if err != nil {
		return errors.NewUserError(err, "check the path with: passmenu config show --paths")
	}
	if !ok {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "%s is not set", path),
			"list the keys with: passmenu config show --paths")
	}

	return writeValue(cmd.OutOrStdout(), value)
}

func renderPath(doc tree.Mapping, path string) string {
	value, ok, err := doc.Get(path)
	if err != nil || !ok {
		return ""
	}
	var b strings.Builder
	_ = writeValue(&b, value)
	return path + "\n\n" + b.String()
}

func writeValue(w io.Writer, value tree.Value) error {
	switch v := value.(type) {
	case tree.Mapping:
		data, err := config.Encode(config.FormatYAML, v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case tree.Scalar:
		if v.IsNull() {
			_, err := fmt.Fprintln(w, "null")
			return err
		}
		_, err := fmt.Fprintln(w, v.Interface())
		return err
	default:
		return errors.Newf("unexpected node %T", value)
	}
}
