// Package cmd holds build metadata shared by the passmenu binaries.
package cmd

// Set via -ldflags "-X github.com/thoreinstein/passmenu/cmd.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
