// Package progtest contains utilities for testing [prog.Program] instances by
// running them with captured standard streams.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.protosketch.dev/pkg/prog"
	"src.protosketch.dev/pkg/testutil"
)

// Case is a test case for Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exitCode int
	out, err output
}

type output struct {
	content  string
	partial  bool
	anything bool
}

func (o output) String() string {
	if o.anything {
		return "anything"
	}
	if o.partial {
		return "text containing " + quote(o.content)
	}
	return quote(o.content)
}

func (o output) matches(s string) bool {
	if o.anything {
		return true
	}
	if o.partial {
		return strings.Contains(s, o.content)
	}
	return s == o.content
}

func quote(s string) string { return "`" + s + "`" }

// ThatProgram returns a new Case with the specified CLI arguments.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "protosketch -bad-flag" exits with 2
// reads like:
//
//	ThatProgram("-bad-flag").ExitsWith(2)
func ThatProgram(args ...string) Case {
	return Case{args: append([]string{"protosketch"}, args...)}
}

// WithStdin returns an altered Case that provides the given input to stdin of
// the program.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatProgram("-log", "x").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program to return with
// the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exitCode = code
	return c
}

// WritesStdout returns an altered Case that requires the program to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.out = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program to
// write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.out = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.err = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program to
// write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.err = output{content: s, partial: true}
	return c
}

// WritesAnything returns an altered Case that accepts any output on stderr.
func (c Case) WritesAnything() Case {
	c.want.err = output{anything: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			r := run(p, c.args, c.stdin)
			if r.exitCode != c.want.exitCode {
				t.Errorf("got exit code %v, want %v", r.exitCode, c.want.exitCode)
			}
			if !c.want.out.matches(r.out.content) {
				t.Errorf("got stdout %v, want %v", r.out, c.want.out)
			}
			if !c.want.err.matches(r.err.content) {
				t.Errorf("got stderr %v, want %v", r.err, c.want.err)
			}
		})
	}
}

// Run runs a Program with the given arguments. It returns the Program's exit
// code and output to stdout and stderr.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	r := run(p, append([]string{"protosketch"}, args...), "")
	return r.exitCode, r.out.content, r.err.content
}

func run(p prog.Program, args []string, stdin string) result {
	r0, w0 := testutil.Must2(os.Pipe())
	testutil.Must1(w0.WriteString(stdin))
	w0.Close()
	defer r0.Close()

	w1, get1 := capture()
	w2, get2 := capture()

	exitCode := prog.Run([3]*os.File{r0, w1, w2}, args, p)
	return result{exitCode, output{content: get1()}, output{content: get2()}}
}

// Reads from the pipe in a separate goroutine so that a large output does not
// block the program on a full pipe buffer.
func capture() (*os.File, func() string) {
	r, w := testutil.Must2(os.Pipe())
	output := make(chan string, 1)
	go func() {
		b, err := io.ReadAll(r)
		if err != nil {
			panic(err)
		}
		r.Close()
		output <- string(b)
	}()
	return w, func() string {
		// Close the write side so the reading goroutine sees EOF and
		// terminates.
		w.Close()
		return <-output
	}
}
