package prog_test

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.protosketch.dev/pkg/logutil"
	. "src.protosketch.dev/pkg/prog"
	"src.protosketch.dev/pkg/prog/progtest"
	"src.protosketch.dev/pkg/testutil"
)

var (
	Test        = progtest.Test
	ThatProgram = progtest.ThatProgram
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)
	t.Cleanup(func() { logutil.SetOutputFile("") })

	Test(t, testProgram{},
		ThatProgram("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatProgram("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatProgram("-help").
			WritesStdoutContaining("Usage: protosketch [flags] [file]"),

		ThatProgram("-log", "log.txt").DoesNothing(),
		ThatProgram("-option", "novalue").
			ExitsWith(2).
			WritesStderrContaining(`"novalue" is not of the form key=value`),
	)

	if _, err := os.Stat("log.txt"); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestOptionFlags(t *testing.T) {
	var got *Flags
	p := flagsProgram{&got}
	exit, _, _ := progtest.Run(p,
		"-option", "pic.dpi=300", "-option", " folder.output = out ", "-no-cache", "a.proto")
	if exit != 0 {
		t.Fatalf("got exit %d", exit)
	}
	want := [][2]string{{"pic.dpi", "300"}, {"folder.output", "out"}}
	if diff := cmp.Diff(want, got.Option.Pairs()); diff != "" {
		t.Errorf("Pairs() (-want +got):\n%s", diff)
	}
	if !got.NoCache {
		t.Errorf("NoCache not set")
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		ThatProgram().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		ThatProgram().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}),
		ThatProgram().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatProgram().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatProgram().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatProgram().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatProgram().ExitsWith(0),
	)
}

// Verify we don't deadlock if more output is written to stdout than can be
// buffered by a pipe.
func TestOutputCaptureDoesNotDeadlock(t *testing.T) {
	Test(t, noisyProgram{},
		ThatProgram().WritesStdoutContaining("hello"),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
}

func (p testProgram) Run(fds [3]*os.File, _ *Flags, args []string) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type flagsProgram struct{ got **Flags }

func (p flagsProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	*p.got = f
	return nil
}

type noisyProgram struct{}

func (noisyProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	// Pipes typically buffer 8 to 128 KiB.
	bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	for i := 0; i < 128*1024/len(bytes); i++ {
		fds[1].Write(bytes)
	}
	fds[1].WriteString("hello")
	return nil
}
