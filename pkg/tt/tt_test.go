package tt

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// testT implements the T interface and is used to verify the Test function's
// interaction with T.
type testT []string

func (t *testT) Helper() {}

func (t *testT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

// Simple functions to test.

func add(x, y int) int {
	return x + y
}

func addsub(x int, y int) (int, int) {
	return x + y, x - y
}

func fail(msg string) error {
	return errors.New("failed: " + msg)
}

func TestTTPass(t *testing.T) {
	var testT testT
	Test(&testT, Fn(addsub),
		Args(1, 10).Rets(11, -9),
		It("handles negative numbers").Args(-1, -1).Rets(-2, 0),
	)
	if len(testT) > 0 {
		t.Errorf("Test errors when test should pass: %v", testT)
	}
}

func TestTTMatchers(t *testing.T) {
	var testT testT
	Test(&testT, Fn(fail),
		Args("x").Rets(ErrorMatching("failed: x")),
		Args("y").Rets(Any),
	)
	if len(testT) > 0 {
		t.Errorf("Test errors when test should pass: %v", testT)
	}
}

func TestTTFailDefaultFmt(t *testing.T) {
	var testT testT
	Test(&testT, Fn(add), Args(1, 10).Rets(12))
	assertOneError(t, testT, "add(1, 10) returns (-want +got):\n")
}

func TestTTFailWithDescription(t *testing.T) {
	var testT testT
	Test(&testT, Fn(add).Named("plus"), It("adds").Args(1, 10).Rets(12))
	assertOneError(t, testT, "plus(1, 10) (adds) returns (-want +got):\n")
}

func TestTTFailCustomFmt(t *testing.T) {
	var testT testT
	Test(&testT,
		Fn(addsub).ArgsFmt("x = %d, y = %d").RetsFmt("(a = %d, b = %d)"),
		Args(1, 10).Rets(11, -90),
	)
	assertOneError(t, testT,
		"addsub(x = 1, y = 10) returns (-want +got):\n-(a = 11, b = -90)\n+(a = 11, b = -9)")
}

func assertOneError(t *testing.T, testT testT, wantPrefix string) {
	t.Helper()
	switch len(testT) {
	case 0:
		t.Errorf("Test didn't error when it should have done so")
	case 1:
		if !strings.HasPrefix(testT[0], wantPrefix) {
			t.Errorf("Test wrote message:\nWanted: %q...\nActual: %q", wantPrefix, testT[0])
		}
	default:
		t.Errorf("Test wrote too many error messages")
	}
}
