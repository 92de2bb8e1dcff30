package parse

import (
	"errors"
	"fmt"
	"strconv"

	"src.protosketch.dev/pkg/diag"
	"src.protosketch.dev/pkg/proto"
)

// SyntaxError is a grammar violation. Parsing stops at the first one.
type SyntaxError = diag.Error[SyntaxErrorTag]

// SyntaxErrorTag parameterizes [diag.Error] to define [SyntaxError].
type SyntaxErrorTag struct{}

func (SyntaxErrorTag) ErrorTag() string { return "syntax error" }

// parser maintains the mutable states of parsing.
type parser struct {
	lx      *Lexer
	srcName string
	src     string
	dir     string

	// Current token, and the number of line breaks before it.
	tok Token
	gap int

	proto *proto.Protocol
	// Comment block that may still grow or become a prefix comment.
	pending *proto.Comment
	// Declaration whose last token is right before tok, or nil.
	last proto.Commentable
	// Whether the protocol header is right before tok.
	afterHeader bool
	// Comment blocks before the header.
	leading []*proto.Comment
}

// Carries a SyntaxError from the point of detection to parse.
type abort struct{ err error }

func (ps *parser) parse() (p *proto.Protocol, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			p, err = nil, a.err
		}
	}()

	ps.advance()
	for ps.tok.Kind == Comment {
		ps.comment()
	}
	ps.header()
	for ps.tok.Kind != EOF {
		switch ps.tok.Kind {
		case Comment:
			ps.comment()
			continue
		case ActorKeyword:
			ps.declare(ps.actor())
		case PictureKeyword:
			ps.declare(ps.picture())
		case Identifier:
			ps.declare(ps.draw())
		default:
			ps.unexpected("a declaration")
		}
	}
	ps.flush()
	return ps.proto, nil
}

// Moves to the next non-newline token, recording the number of line breaks
// skipped in ps.gap.
func (ps *parser) advance() {
	ps.gap = 0
	ps.last = nil
	ps.afterHeader = false
	for {
		t := ps.lx.Next()
		if t.Kind != Newline {
			ps.tok = t
			return
		}
		ps.gap += t.Count
	}
}

func (ps *parser) expect(k Kind) Token {
	if ps.tok.Kind != k {
		ps.unexpected(k.String())
	}
	t := ps.tok
	ps.advance()
	return t
}

func (ps *parser) unexpected(what string) {
	if ps.tok.Kind == EOF {
		ps.errorf(ps.tok, "unexpected end of input, expecting %s", what)
	}
	ps.errorf(ps.tok, "unexpected %s, expecting %s", ps.tok, what)
}

func (ps *parser) errorf(r diag.Ranger, format string, args ...any) {
	rg := r.Range()
	panic(abort{&SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ps.srcName, ps.src, rg),
		Partial: rg.From == len(ps.src),
	}})
}

// Handles the comment at ps.tok, following the adjacency rules:
//
//   - A comment on the same line as the end of the previous declaration is
//     its suffix.
//   - A comment on the line after a pending comment is merged into it.
//   - Otherwise it starts a new pending comment, which becomes the prefix of
//     a declaration on the next line, or stands free.
func (ps *parser) comment() {
	t, gap, last, afterHeader := ps.tok, ps.gap, ps.last, ps.afterHeader
	ps.advance()
	switch {
	case gap == 0 && last != nil:
		last.Comments().Suffix = proto.NewComment(t.Value)
	case gap == 0 && afterHeader:
		ps.flush()
		ps.proto.Add(proto.NewComment(t.Value))
	case gap == 1 && ps.pending != nil:
		ps.pending.AddLine(t.Value)
	default:
		ps.flush()
		ps.pending = proto.NewComment(t.Value)
	}
}

// Records the pending comment as a free-standing block.
func (ps *parser) flush() {
	if ps.pending == nil {
		return
	}
	if ps.proto == nil {
		ps.leading = append(ps.leading, ps.pending)
	} else {
		ps.proto.Add(ps.pending)
	}
	ps.pending = nil
}

// Returns the pending comment if it is directly above the current token.
func (ps *parser) prefix() *proto.Comment {
	if ps.pending != nil && ps.gap == 1 {
		c := ps.pending
		ps.pending = nil
		return c
	}
	ps.flush()
	return nil
}

func (ps *parser) declare(d proto.Commentable) {
	ps.proto.Add(d)
	ps.last = d
}

// header = 'protocol' IDENTIFIER [ '(' params ')' ]
func (ps *parser) header() {
	ps.flush()
	ps.expect(ProtocolKeyword)
	name := ps.expect(Identifier)
	params, ranges := ps.optionalParams()
	p, err := proto.NewProtocol(name.Value, params)
	if err != nil {
		ps.paramError(err, ranges)
	}
	ps.proto = p
	// Comments before the header stand free before everything else.
	for _, c := range ps.leading {
		p.Add(c)
	}
	ps.afterHeader = true
}

// actor = 'actor' IDENTIFIER [ '(' params ')' ]
func (ps *parser) actor() *proto.Actor {
	prefix := ps.prefix()
	ps.advance()
	name := ps.expect(Identifier)
	params, ranges := ps.optionalParams()
	a, err := proto.NewActor(name.Value, params)
	if err != nil {
		ps.paramError(err, ranges)
	}
	a.Prefix = prefix
	return a
}

// picture = 'picture' IDENTIFIER [ '(' params ')' ] ':' TEXT
func (ps *parser) picture() *proto.Picture {
	prefix := ps.prefix()
	ps.advance()
	name := ps.expect(Identifier)
	params, ranges := ps.optionalParams()
	ps.expect(Colon)
	file := ps.tok
	ps.expect(Text)
	pic, err := proto.NewPicture(name.Value, file.Value, params, ps.dir)
	if err != nil {
		var re *proto.ResourceError
		if errors.As(err, &re) {
			panic(abort{err})
		}
		ps.paramError(err, ranges)
	}
	pic.Prefix = prefix
	return pic
}

// draw = IDENTIFIER [ marker marker IDENTIFIER ] [ '(' params ')' ] ':' TEXT
func (ps *parser) draw() *proto.Draw {
	prefix := ps.prefix()
	src := ps.expect(Identifier)
	dst := src
	larrow, rarrow := proto.None, proto.None
	if m, ok := ps.marker(); ok {
		larrow = m
		if rarrow, ok = ps.marker(); !ok {
			ps.unexpected("'<', '>' or '-'")
		}
		dst = ps.expect(Identifier)
	}
	params, ranges := ps.optionalParams()
	ps.expect(Colon)
	text := ps.expect(Text)
	d, err := proto.NewDraw(src.Value, dst.Value, larrow, rarrow, proto.Message{Text: text.Value}, params)
	if err != nil {
		ps.paramError(err, ranges)
	}
	d.Prefix = prefix
	return d
}

func (ps *parser) marker() (proto.Marker, bool) {
	var m proto.Marker
	switch ps.tok.Kind {
	case LAngle:
		m = proto.Left
	case RAngle:
		m = proto.Right
	case Minus:
		m = proto.None
	default:
		return 0, false
	}
	ps.advance()
	return m, true
}

// params = [ param { ',' param } ]
// param = PARAM_KEYWORD '=' ( NUMBER | IDENTIFIER )
//
// Returns the parameters and the range of each of them.
func (ps *parser) optionalParams() (proto.Params, []diag.Ranging) {
	if ps.tok.Kind != LParen {
		return nil, nil
	}
	ps.advance()
	var params proto.Params
	var ranges []diag.Ranging
	for ps.tok.Kind != RParen {
		if len(params) > 0 {
			ps.expect(Comma)
		}
		key := ps.tok
		switch key.Kind {
		case ParamKeyword:
		case Identifier:
			ps.errorf(key, "unknown parameter %s", key.Value)
		default:
			ps.unexpected("a parameter name")
		}
		ps.advance()
		ps.expect(Equal)
		value := ps.tok
		var v proto.Value
		switch value.Kind {
		case Number:
			v = proto.NumberValue(ps.number(value))
		case Identifier:
			v = proto.IdentValue(value.Value)
		default:
			ps.unexpected("a number or an identifier")
		}
		ps.advance()
		params = append(params, proto.Param{Key: key.Value, Value: v})
		ranges = append(ranges, diag.MixedRanging(key, value))
	}
	ps.advance()
	return params, ranges
}

func (ps *parser) number(t Token) proto.Coord {
	if t.Value == "auto" {
		return proto.Auto
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		ps.errorf(t, "number %s out of range", t.Value)
	}
	return proto.Fixed(n)
}

func (ps *parser) paramError(err error, ranges []diag.Ranging) {
	var pe *proto.ParamError
	if errors.As(err, &pe) && pe.Index < len(ranges) {
		ps.errorf(ranges[pe.Index], "%s", pe.Message)
	}
	panic(abort{err})
}
