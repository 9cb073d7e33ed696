// Package main is the entry point for the passmenu CLI.
package main

import (
	"os"

	"github.com/thoreinstein/passmenu/cmd/passmenu/commands"
	"github.com/thoreinstein/passmenu/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
