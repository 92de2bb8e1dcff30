package diag

import (
	"errors"
	"fmt"
	"testing"

	"src.protosketch.dev/pkg/errutil"
)

type testErrorTag struct{}

func (testErrorTag) ErrorTag() string { return "some error" }

type otherErrorTag struct{}

func (otherErrorTag) ErrorTag() string { return "other error" }

func TestError(t *testing.T) {
	setCaretMarkers(t, "<", ">")
	setMessageMarkers(t, "{", "}")

	err := &Error[testErrorTag]{
		Message: "bad list",
		Context: *contextInParen("[test]", "echo (x)"),
	}

	wantErrorString := "some error: [test]:1:6: bad list"
	if gotErrorString := err.Error(); gotErrorString != wantErrorString {
		t.Errorf("Error() -> %q, want %q", gotErrorString, wantErrorString)
	}

	wantRanging := Ranging{From: 5, To: 8}
	if gotRanging := err.Range(); gotRanging != wantRanging {
		t.Errorf("Range() -> %v, want %v", gotRanging, wantRanging)
	}

	// Type is capitalized in return value of Show
	wantShow := dedent(`
		Some error: {bad list}
		  [test]:1:6:
		    echo (x)
		         <^^^>`)
	if gotShow := err.Show(""); gotShow != wantShow {
		t.Errorf("Show() -> %q, want %q", gotShow, wantShow)
	}
}

func TestUnpackErrors(t *testing.T) {
	err1 := &Error[testErrorTag]{Message: "1", Context: *NewContext("", "", PointRanging(0))}
	err2 := &Error[testErrorTag]{Message: "2", Context: *NewContext("", "", PointRanging(0))}
	other := &Error[otherErrorTag]{Message: "3", Context: *NewContext("", "", PointRanging(0))}

	if got := UnpackErrors[testErrorTag](nil); got != nil {
		t.Errorf("UnpackErrors(nil) -> %v, want nil", got)
	}
	got := UnpackErrors[testErrorTag](errutil.Multi(err1, other, errors.New("x"), err2))
	if len(got) != 2 || got[0] != err1 || got[1] != err2 {
		t.Errorf("UnpackErrors -> %v, want [err1 err2]", got)
	}
	wrapped := fmt.Errorf("wrapped: %w", err1)
	if got := UnpackErrors[testErrorTag](wrapped); len(got) != 1 || got[0] != err1 {
		t.Errorf("UnpackErrors(wrapped) -> %v, want [err1]", got)
	}
}
