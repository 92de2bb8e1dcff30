package diag

import (
	"errors"
	"strings"
	"testing"

	"src.protosketch.dev/pkg/errutil"
)

type showerError struct{}

func (showerError) Error() string { return "error" }

func (showerError) Show(_ string) string { return "\033[1mshow\033[m" }

var showErrorTests = []struct {
	name    string
	err     error
	wantBuf string
}{
	{"A Shower error", showerError{}, "show\n"},
	{"A errors.New error", errors.New("ERROR"), "ERROR\n"},
	{"A multi error", errutil.Multi(showerError{}, errors.New("ERROR")), "show\nERROR\n"},
}

func TestShowError_StripsStylingForNonTerminal(t *testing.T) {
	for _, test := range showErrorTests {
		t.Run(test.name, func(t *testing.T) {
			sb := &strings.Builder{}
			ShowError(sb, test.err)
			if sb.String() != test.wantBuf {
				t.Errorf("Wrote %q, want %q", sb.String(), test.wantBuf)
			}
		})
	}
}

func TestComplain(t *testing.T) {
	sb := &strings.Builder{}
	Complainf(sb, "bad %s", "thing")
	if want := "\033[31;1mbad thing\033[m\n"; sb.String() != want {
		t.Errorf("Wrote %q, want %q", sb.String(), want)
	}
}
