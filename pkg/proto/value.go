package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is an integer position or length that may be left "auto" for the
// layout engine to decide. The zero value is auto.
type Coord struct {
	N   int
	Set bool
}

// Auto is the auto Coord.
var Auto = Coord{}

// Fixed returns a Coord fixed at n.
func Fixed(n int) Coord { return Coord{n, true} }

// IsAuto reports whether c is auto.
func (c Coord) IsAuto() bool { return !c.Set }

// Or returns c.N if c is fixed, and def otherwise.
func (c Coord) Or(def int) int {
	if c.Set {
		return c.N
	}
	return def
}

func (c Coord) String() string {
	if !c.Set {
		return "auto"
	}
	return strconv.Itoa(c.N)
}

// Value is the value of a parameter: either a number (which may be auto) or
// an identifier.
type Value struct {
	Num     Coord
	Ident   string
	IsIdent bool
}

// NumberValue returns a number Value.
func NumberValue(c Coord) Value { return Value{Num: c} }

// IdentValue returns an identifier Value.
func IdentValue(s string) Value { return Value{Ident: s, IsIdent: true} }

func (v Value) String() string {
	if v.IsIdent {
		return v.Ident
	}
	return v.Num.String()
}

// Param is one key=value pair.
type Param struct {
	Key   string
	Value Value
}

// Params is an ordered list of parameters, used to construct declarations. When
// a key appears more than once, the last one wins.
type Params []Param

func (ps Params) String() string {
	var sb strings.Builder
	for i, p := range ps {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Key + "=" + p.Value.String())
	}
	return sb.String()
}

// ParamError is returned by the declaration constructors when a parameter is
// not accepted.
type ParamError struct {
	// Index of the offending parameter in Params.
	Index   int
	Key     string
	Message string
}

func (e *ParamError) Error() string { return e.Message }

type paramSetter struct {
	ident bool
	set   func(Value)
}

func numberSetter(f func(Coord)) paramSetter {
	return paramSetter{false, func(v Value) { f(v.Num) }}
}

func identSetter(f func(string)) paramSetter {
	return paramSetter{true, func(v Value) { f(v.Ident) }}
}

func applyParams(what string, ps Params, setters map[string]paramSetter) error {
	for i, p := range ps {
		s, ok := setters[p.Key]
		if !ok {
			return &ParamError{i, p.Key,
				fmt.Sprintf("%s does not accept parameter %s", what, p.Key)}
		}
		if s.ident != p.Value.IsIdent {
			want := "a number"
			if s.ident {
				want = "an identifier"
			}
			return &ParamError{i, p.Key,
				fmt.Sprintf("parameter %s should be %s", p.Key, want)}
		}
		s.set(p.Value)
	}
	return nil
}

// Marker is the arrowhead marker at one end of an arrow glyph.
type Marker byte

// Possible Marker values. The byte value is the source character.
const (
	None  Marker = '-'
	Left  Marker = '<'
	Right Marker = '>'
)

// MarkerOf returns the Marker for the given source character.
func MarkerOf(r rune) (Marker, bool) {
	switch r {
	case rune(None), rune(Left), rune(Right):
		return Marker(r), true
	}
	return 0, false
}

// Mirror returns the marker seen in a mirror: Left and Right swap, None stays.
func (m Marker) Mirror() Marker {
	switch m {
	case Left:
		return Right
	case Right:
		return Left
	}
	return m
}

func (m Marker) String() string {
	if m == 0 {
		return string(None)
	}
	return string(m)
}
