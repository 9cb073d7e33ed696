// Package commands implements the passmenu CLI.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	build "github.com/thoreinstein/passmenu/cmd"
	"github.com/thoreinstein/passmenu/internal/backup"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
)

// envDebug raises the log level when no -v flag is given: 1 or true for
// debug, 2 for trace.
const envDebug = "PASSMENU_DEBUG"

var (
	// configPath holds the value of the --config flag.
	configPath string

	// verbosity holds the count of -v flags.
	verbosity int

	quiet     bool
	logFormat string
	logFile   string

	// logFileHandle is closed when the command finishes.
	logFileHandle io.Closer
)

func init() {
	cobra.OnFinalize(closeLogFile)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: $XDG_CONFIG_HOME/passmenu/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write logs to file in JSON format")

	rootCmd.Version = build.Version
	rootCmd.SetVersionTemplate("passmenu version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	backup.Version = build.Version
}

var rootCmd = &cobra.Command{
	Use:   "passmenu",
	Short: "Inspect and upgrade the passmenu configuration",
	Long: `passmenu reads its configuration from a YAML or TOML document whose
layout has changed over time. Every document declares its layout with a
config-version key; documents written before the key existed are treated
as version 0.1.

Documents are upgraded in memory whenever they are loaded. Use
'passmenu config migrate' to write the upgraded layout back to disk.`,
	Example: `  # Show which layout the config file uses
  passmenu config version

  # Preview and then apply the upgrade
  passmenu config migrate --dry-run
  passmenu config migrate

  See Also: passmenu config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("--quiet and --verbose are mutually exclusive"),
			"use one of --quiet or --verbose")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			switch os.Getenv(envDebug) {
			case "1", "true":
				v = 2
			case "2":
				v = 3
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	cfg := logging.Config{
		Level:  level,
		Format: logging.ParseFormat(logFormat),
		Output: cmd.ErrOrStderr(),
	}

	if logFile != "" {
		closeLogFile()
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewSystemError(errors.Wrap(err, "opening log file"),
				"check that the --log-file directory exists and is writable")
		}
		cfg.File = f
		logFileHandle = f
	}

	logger := logging.New(cfg)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

func closeLogFile() {
	if logFileHandle != nil {
		logFileHandle.Close()
		logFileHandle = nil
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
