// Package tt supports table-driven tests with little boilerplate.
//
// A typical use of this package looks like this:
//
//	// Function being tested
//	func Neg(i int) int { return -i }
//
//	func TestNeg(t *testing.T) {
//		tt.Test(t, tt.Fn(Neg).Named("Neg"),
//			tt.Args(2).Rets(-2),
//			tt.It("handles zero").Args(0).Rets(0),
//		)
//	}
//
// Return values are compared with [cmp.Equal], with unexported fields taken
// into account.
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Case represents a test case. It is created by the It or Args function, and
// offers setters that augment and return itself; those calls can be chained
// like It(...).Args(...).Rets(...).
type Case struct {
	desc         string
	args         []any
	retsMatchers [][]any
}

// It returns a Case with the given text description.
func It(desc string) *Case {
	return &Case{desc: desc}
}

// Args is equivalent to It("").Args(args...).
func Args(args ...any) *Case {
	return &Case{args: args}
}

// Args modifies the Case to pass the given arguments. It returns the receiver.
func (c *Case) Args(args ...any) *Case {
	c.args = args
	return c
}

// Rets modifies the test case so that it requires the return values to match
// the given values. It returns the receiver. The arguments may implement the
// [Matcher] interface, in which case its Match method is called with the
// actual return value. Otherwise, [cmp.Equal] is used to determine matches.
func (c *Case) Rets(matchers ...any) *Case {
	c.retsMatchers = append(c.retsMatchers, matchers)
	return c
}

// FnDescriptor describes a function to test. It is created with Fn, and
// offers setters that augment and return itself.
type FnDescriptor struct {
	name    string
	body    any
	argsFmt string
	retsFmt string
}

// Fn creates a FnDescriptor for the given function. The function's name is
// derived with reflection; use Named to override it.
func Fn(body any) *FnDescriptor {
	name := "fn"
	if f := runtimeFuncName(body); f != "" {
		name = f
	}
	return &FnDescriptor{name: name, body: body}
}

// Named sets the name of the function used in error messages.
func (fn *FnDescriptor) Named(name string) *FnDescriptor {
	fn.name = name
	return fn
}

// ArgsFmt sets the string for formatting arguments in test error messages.
func (fn *FnDescriptor) ArgsFmt(s string) *FnDescriptor {
	fn.argsFmt = s
	return fn
}

// RetsFmt sets the string for formatting return values in test error
// messages.
func (fn *FnDescriptor) RetsFmt(s string) *FnDescriptor {
	fn.retsFmt = s
	return fn
}

// T is the interface for accessing testing.T.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Test tests a function against test cases.
func Test(t T, fn *FnDescriptor, tests ...*Case) {
	t.Helper()
	for _, test := range tests {
		rets := call(fn.body, test.args)
		for _, retsMatcher := range test.retsMatchers {
			if match(retsMatcher, rets) {
				continue
			}
			var args string
			if fn.argsFmt == "" {
				args = sprintCommaDelimited(test.args...)
			} else {
				args = fmt.Sprintf(fn.argsFmt, test.args...)
			}
			var diff string
			if fn.retsFmt == "" {
				diff = cmp.Diff(retsMatcher, rets, allowUnexported)
			} else {
				diff = fmt.Sprintf("-"+fn.retsFmt+"\n+"+fn.retsFmt,
					append(append([]any(nil), retsMatcher...), rets...)...)
			}
			var desc string
			if test.desc != "" {
				desc = " (" + test.desc + ")"
			}
			t.Errorf("%s(%s)%s returns (-want +got):\n%s", fn.name, args, desc, diff)
		}
	}
}

// Matcher wraps the Match method.
type Matcher interface {
	// Match reports whether a return value is considered a match.
	Match(RetValue) bool
}

// RetValue is an empty interface used in the Matcher interface, so that it
// cannot be implemented accidentally.
type RetValue any

// Any is a Matcher that matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(RetValue) bool { return true }

// ErrorMatching returns a Matcher that matches a non-nil error whose message
// contains the given substring.
func ErrorMatching(substr string) Matcher { return errorMatcher{substr} }

type errorMatcher struct{ substr string }

func (m errorMatcher) Match(v RetValue) bool {
	err, ok := v.(error)
	return ok && err != nil && strings.Contains(err.Error(), m.substr)
}

var allowUnexported = cmp.Exporter(func(reflect.Type) bool { return true })

func match(matchers, actual []any) bool {
	if len(matchers) != len(actual) {
		return false
	}
	for i, matcher := range matchers {
		if !matchOne(matcher, actual[i]) {
			return false
		}
	}
	return true
}

func matchOne(m, a any) bool {
	if m, ok := m.(Matcher); ok {
		return m.Match(a)
	}
	return cmp.Equal(m, a, allowUnexported)
}

func sprintCommaDelimited(args ...any) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, arg)
	}
	return b.String()
}

func call(fn any, args []any) []any {
	argsReflect := make([]reflect.Value, len(args))
	fnType := reflect.TypeOf(fn)
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) returns a zero Value; use a typed zero value
			// of the parameter type instead.
			argsReflect[i] = reflect.Zero(paramType(fnType, i))
		} else {
			argsReflect[i] = reflect.ValueOf(arg)
		}
	}
	retsReflect := reflect.ValueOf(fn).Call(argsReflect)
	rets := make([]any, len(retsReflect))
	for i, retReflect := range retsReflect {
		rets[i] = retReflect.Interface()
	}
	return rets
}

func paramType(fnType reflect.Type, i int) reflect.Type {
	if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
		return fnType.In(fnType.NumIn() - 1).Elem()
	}
	return fnType.In(i)
}
