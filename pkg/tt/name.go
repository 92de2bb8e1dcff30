package tt

import (
	"reflect"
	"runtime"
	"strings"
)

// Returns the unqualified name of a function value, or "" if it cannot be
// determined.
func runtimeFuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
