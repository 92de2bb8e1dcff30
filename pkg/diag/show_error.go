package diag

import (
	"fmt"
	"io"
	"regexp"

	"src.protosketch.dev/pkg/errutil"
	"src.protosketch.dev/pkg/sys"
)

// Shower wraps the Show function.
type Shower interface {
	// Show takes an indentation string and shows.
	Show(indent string) string
}

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// ShowError shows an error. Each constituent of an error built with
// [errutil.Multi] is shown on its own. It uses the Show method if the error
// implements Shower, and uses Complain to print the error message otherwise.
// ANSI styling is only kept when w is a terminal.
func ShowError(w io.Writer, err error) {
	styled := sys.IsTerminalWriter(w)
	for _, e := range errutil.Unpack(err) {
		var s string
		if shower, ok := e.(Shower); ok {
			s = shower.Show("") + "\n"
		} else {
			s = complaint(e.Error())
		}
		if !styled {
			s = sgrPattern.ReplaceAllString(s, "")
		}
		io.WriteString(w, s)
	}
}

// Complain prints a message to w in bold and red, adding a trailing newline.
func Complain(w io.Writer, msg string) {
	io.WriteString(w, complaint(msg))
}

// Complainf is like Complain, but accepts a format string and arguments.
func Complainf(w io.Writer, format string, args ...any) {
	Complain(w, fmt.Sprintf(format, args...))
}

func complaint(msg string) string {
	return "\033[31;1m" + msg + "\033[m\n"
}
