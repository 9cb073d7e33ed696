// Package logging provides structured logging for the passmenu CLI using slog.
//
// Text output goes through a TTY-aware colour [Handler]; JSON output uses the
// standard library handler. A log file, when configured, receives a JSON copy
// of every record. Attribute values whose keys look like secrets are masked
// by the text handler.
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.ParseFormat(flag),
//	})
//	ctx = logging.NewContext(ctx, logger)
//
// Library code retrieves the logger with [FromContext]; tests use [ForTest].
package logging
