package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is attached to a terminal. Only writers exposing a
// file descriptor, such as *os.File, can be terminals.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor reports whether log output to w may carry ANSI colors.
// NO_COLOR always wins; CLICOLOR_FORCE enables color off a terminal, which
// is how colored logs survive `passmenu ... 2>&1 | less -R`.
func SupportsColor(w io.Writer) bool {
	return colorAllowed(IsTTY(w), os.LookupEnv)
}

func colorAllowed(isTTY bool, lookup func(string) (string, bool)) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if v, ok := lookup("CLICOLOR_FORCE"); ok && v != "" && v != "0" {
		return true
	}
	if v, _ := lookup("TERM"); v == "dumb" {
		return false
	}
	return isTTY
}
