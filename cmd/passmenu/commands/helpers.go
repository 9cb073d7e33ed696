package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/backup"
	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
	"github.com/thoreinstein/passmenu/internal/paths"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/tree"
	"github.com/thoreinstein/passmenu/internal/upgrade"
)

var (
	errLabel  = color.New(color.FgRed, color.Bold)
	hintLabel = color.New(color.FgYellow)
	okLabel   = color.New(color.FgGreen)
	idLabel   = color.New(color.FgCyan)
)

// PrintError writes err and any suggestion attached to it.
func PrintError(w io.Writer, err error) {
	errLabel.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)

	suggestion := ""
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		suggestion = exitErr.Suggestion
	}
	if suggestion == "" {
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			suggestion = hints[0]
		}
	}
	if suggestion != "" {
		hintLabel.Fprint(w, "Hint: ")
		fmt.Fprintln(w, suggestion)
	}
}

// documentErrors are problems with the document's content rather than with
// reading or writing it.
var documentErrors = []error{
	errors.ErrNotFound,
	errors.ErrInvalidConfig,
	config.ErrVersionMarker,
	config.ErrInvalidDocument,
	config.ErrUnsupportedFormat,
	schema.ErrMalformedVersion,
	upgrade.ErrNoUpgradePath,
	upgrade.ErrUpgradeChainTooLong,
	tree.ErrInvalidPath,
	tree.ErrPathAlreadySet,
}

// classify converts a loader error into an ExitError.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	for _, target := range documentErrors {
		if errors.Is(err, target) {
			return errors.NewConfigError(err)
		}
	}
	return errors.NewSystemError(err, "check that the config file and its directory are readable and writable")
}

// resolvedPath is the config file the command operates on.
func resolvedPath() string {
	return paths.Resolve(configPath)
}

// newLoader returns a Loader logging through the command's logger.
func newLoader(cmd *cobra.Command, opts ...config.Option) *config.Loader {
	opts = append([]config.Option{config.WithLogger(logging.FromContext(cmd.Context()))}, opts...)
	return config.NewLoader(opts...)
}

// load reads the config file the command operates on.
func load(cmd *cobra.Command, opts ...config.Option) (*config.Result, error) {
	res, err := newLoader(cmd, opts...).Load(cmd.Context(), configPath)
	return res, classify(err)
}

// backupManager keeps backups next to the config file they belong to.
func backupManager(opts ...backup.Option) *backup.Manager {
	dir := filepath.Join(filepath.Dir(resolvedPath()), "backups")
	return backup.NewManager(append([]backup.Option{backup.WithBackupDir(dir)}, opts...)...)
}

// printf writes to the command's output unless --quiet is set.
func printf(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
