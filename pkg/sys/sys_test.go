package sys

import (
	"os"
	"strings"
	"testing"
)

func TestIsTerminalWriter_NonFile(t *testing.T) {
	if IsTerminalWriter(&strings.Builder{}) {
		t.Errorf("strings.Builder reported as terminal")
	}
}

func TestIsTerminalWriter_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "sys")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminalWriter(f) {
		t.Errorf("regular file reported as terminal")
	}
}
