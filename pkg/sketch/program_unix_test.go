//go:build !windows

package sketch

import (
	"os"
	"strings"
	"testing"

	"github.com/creack/pty"

	"src.protosketch.dev/pkg/prog"
	"src.protosketch.dev/pkg/testutil"
)

func TestProgram_StylesErrorsOnTerminal(t *testing.T) {
	testutil.InTempDir(t)
	testutil.MustWriteFile("bad.proto", []byte("protocol P\nA->: \"hi\"\n"))

	ptm, tty, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer ptm.Close()
	devNull := testutil.Must1(os.Open(os.DevNull))
	defer devNull.Close()

	exit := prog.Run([3]*os.File{devNull, devNull, tty},
		[]string{"protosketch", "bad.proto"}, Program)
	tty.Close()
	if exit != 2 {
		t.Errorf("got exit %d, want 2", exit)
	}

	buf := make([]byte, 4096)
	n, _ := ptm.Read(buf)
	out := string(buf[:n])
	if !strings.Contains(out, "\033[") {
		t.Errorf("error on terminal is not styled: %q", out)
	}
	if !strings.Contains(out, "unexpected") {
		t.Errorf("got %q, want the syntax error", out)
	}
}
