// Package sys provides system utilities with the same API across OSes.
package sys

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsTerminalWriter reports whether w is an *os.File connected to a terminal.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f != nil && IsATTY(f.Fd())
}
