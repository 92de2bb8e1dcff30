package diag

import (
	"strings"
	"testing"

	"src.protosketch.dev/pkg/testutil"
)

var dedent = testutil.Dedent

func setCaretMarkers(t *testing.T, start, end string) {
	testutil.Set(t, &caretStart, start)
	testutil.Set(t, &caretEnd, end)
}

func setMessageMarkers(t *testing.T, start, end string) {
	testutil.Set(t, &messageStart, start)
	testutil.Set(t, &messageEnd, end)
}

// Returns a Context with the given name and source, and a range for the part
// between ( and ).
func contextInParen(name, src string) *Context {
	return NewContext(name, src,
		Ranging{strings.Index(src, "("), strings.Index(src, ")") + 1})
}
