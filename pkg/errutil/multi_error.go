// Package errutil contains utilities for working with errors.
package errutil

import "strings"

// Multi combines multiple errors into one:
//
//   - If all errors are nil, it returns nil.
//
//   - If there is one non-nil error, it is returned.
//
//   - Otherwise, the return value is an error whose Error method contains all
//     the messages of all non-nil arguments, one per line.
//
// If the input contains any error returned by Multi, such errors are flattened.
// The following two calls return the same value:
//
//	Multi(Multi(err1, err2), Multi(err3, err4))
//	Multi(err1, err2, err3, err4)
//
// The combined error implements Unwrap() []error, so errors.Is and errors.As
// see every constituent.
func Multi(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			if multi, ok := err.(multiError); ok {
				nonNil = append(nonNil, multi...)
			} else {
				nonNil = append(nonNil, err)
			}
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return multiError(nonNil)
	}
}

// Unpack returns the constituent errors of an error returned by Multi. For any
// other non-nil error it returns a slice containing just that error.
func Unpack(err error) []error {
	switch err := err.(type) {
	case nil:
		return nil
	case multiError:
		return err
	default:
		return []error{err}
	}
}

type multiError []error

func (me multiError) Error() string {
	var sb strings.Builder
	sb.WriteString("multiple errors:")
	for _, e := range me {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func (me multiError) Unwrap() []error { return me }
