package testutil

import "os"

// MustMkdirAll calls os.MkdirAll for each argument and panics if an error is
// returned.
func MustMkdirAll(names ...string) {
	for _, name := range names {
		Must(os.MkdirAll(name, 0700))
	}
}

// MustWriteFile calls os.WriteFile and panics if an error occurs.
func MustWriteFile(filename string, data []byte) {
	Must(os.WriteFile(filename, data, 0644))
}

// MustReadFile calls os.ReadFile and panics if an error occurs.
func MustReadFile(filename string) []byte {
	return Must1(os.ReadFile(filename))
}

// Must panics if the error value is not nil. It is typically used like this:
//
//	testutil.Must(a_function())
//
// Where `a_function` returns a single error value.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 is like Must, for functions that return one value and an error.
func Must1[T any](v T, err error) T {
	Must(err)
	return v
}

// Must2 is like Must, for functions that return two values and an error.
func Must2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	Must(err)
	return v1, v2
}
