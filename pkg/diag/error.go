package diag

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.protosketch.dev/pkg/errutil"
)

// ErrorTag is used to parameterize [Error] into different concrete types.
type ErrorTag interface {
	ErrorTag() string
}

// Error represents an error with context that can be showed.
type Error[T ErrorTag] struct {
	Message string
	Context Context
	// Indicates whether the error occurred at the end of the source.
	Partial bool
}

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	return errorTag[T]() + ": " + e.Context.Describe() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

// Position returns the 1-based line and column of the error.
func (e *Error[T]) Position() (line, col int) {
	return e.Context.Position()
}

var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s\n", capitalize(errorTag[T]()), messageStart, e.Message, messageEnd)
	return header + indent + "  " + e.Context.Show(indent+"    ")
}

func errorTag[T ErrorTag]() string {
	var t T
	return t.ErrorTag()
}

// UnpackErrors returns the constituent Error instances in an error if it is
// built from [errutil.Multi]. Otherwise it returns a slice containing just the
// error if it is an Error, or nil if it is not.
func UnpackErrors[T ErrorTag](err error) []*Error[T] {
	var errs []*Error[T]
	for _, e := range errutil.Unpack(err) {
		var te *Error[T]
		if errors.As(e, &te) {
			errs = append(errs, te)
		}
	}
	return errs
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.TrimPrefix(s, s[:size])
}
