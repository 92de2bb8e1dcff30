// Package parse implements the lexer and the parser of protocol documents.
//
// Parsing happens in one pass over a lazy token stream. Lex errors are
// recoverable: the offending character is skipped and lexing continues, so all
// of them are reported. Syntax errors are not: parsing stops at the first one.
package parse

import (
	"src.protosketch.dev/pkg/diag"
	"src.protosketch.dev/pkg/errutil"
	"src.protosketch.dev/pkg/logutil"
	"src.protosketch.dev/pkg/proto"
)

var logger = logutil.GetLogger("[parse] ")

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// Config keeps configuration options when parsing.
type Config struct {
	// Directory that relative picture paths are resolved against. The current
	// directory is used when empty.
	Dir string
}

// Parse parses the given source as a protocol document.
//
// The returned error combines all lex errors with the syntax error or
// resource error that stopped parsing, if any, using [errutil.Multi]. Use
// [UnpackErrors] to get the positional errors. The protocol is nil when
// parsing stopped, and is returned alongside lex errors otherwise.
func Parse(src Source, cfg Config) (*proto.Protocol, error) {
	ps := &parser{lx: NewLexer(src.Name, src.Code), srcName: src.Name, src: src.Code, dir: cfg.Dir}
	p, err := ps.parse()
	var errs []error
	for _, e := range ps.lx.Errors() {
		errs = append(errs, e)
	}
	if err != nil {
		logger.Printf("parsing %s stopped: %v", src.Name, err)
		return nil, errutil.Multi(append(errs, err)...)
	}
	return p, errutil.Multi(errs...)
}

// UnpackErrors returns the constituent lex and syntax errors if the given
// error contains any, in source order. It returns nil otherwise.
func UnpackErrors(e error) []ErrorWithPosition {
	var errs []ErrorWithPosition
	for _, e := range errutil.Unpack(e) {
		if pe, ok := e.(ErrorWithPosition); ok {
			errs = append(errs, pe)
		}
	}
	return errs
}

// ErrorWithPosition is implemented by [LexError] and [SyntaxError].
type ErrorWithPosition interface {
	error
	Range() diag.Ranging
	Position() (line, col int)
}
