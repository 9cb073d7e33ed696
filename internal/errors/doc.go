// Package errors provides error handling conventions for the passmenu CLI.
//
// It re-exports the constructors of [github.com/cockroachdb/errors] so the
// rest of the module wraps, marks and hints errors through one import, and
// defines an ExitError type for CLI exit code handling.
//
// # Hints
//
// Document problems carry a user-facing hint attached with [WithHint]. The
// CLI turns the first hint into the suggestion printed after the error:
//
//	err := errors.WithHint(upgrade.ErrNoUpgradePath, "the file was written by a newer passmenu")
//	exitErr := errors.NewConfigError(err)
//	// exitErr.Suggestion == "the file was written by a newer passmenu"
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitUser (1): the configuration document or a flag is wrong
//   - ExitSystem (2): I/O, permissions, or other environment failures
package errors
