package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.protosketch.dev/pkg/diag"
)

// LexError is an error found by the lexer.
type LexError = diag.Error[LexErrorTag]

// LexErrorTag parameterizes [diag.Error] to define [LexError].
type LexErrorTag struct{}

func (LexErrorTag) ErrorTag() string { return "lex error" }

// Lexer splits source code into tokens lazily. Offending characters are
// recorded as errors and skipped, so lexing always reaches EOF.
type Lexer struct {
	name   string
	src    string
	pos    int
	errors []*LexError
}

// NewLexer creates a Lexer. The name is used in error messages.
func NewLexer(name, src string) *Lexer {
	return &Lexer{name: name, src: src}
}

// Reset restarts lexing from the beginning of the source and clears errors.
func (lx *Lexer) Reset() {
	lx.pos = 0
	lx.errors = nil
}

// Errors returns the errors found so far.
func (lx *Lexer) Errors() []*LexError { return lx.errors }

// All returns all the remaining tokens, ending with an EOF token.
func (lx *Lexer) All() []Token {
	var tokens []Token
	for {
		t := lx.Next()
		tokens = append(tokens, t)
		if t.Kind == EOF {
			return tokens
		}
	}
}

// Next returns the next token. After the end of the source is reached, it
// keeps returning EOF tokens.
func (lx *Lexer) Next() Token {
	for {
		lx.skipSpaces()
		if lx.pos == len(lx.src) {
			return lx.token(EOF, lx.pos, "")
		}
		begin := lx.pos
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		switch {
		case r == '\n':
			return lx.newlines()
		case r == '#':
			end := lx.pos + strings.IndexByte(lx.src[lx.pos:]+"\n", '\n')
			lx.pos = end
			t := lx.token(Comment, begin, strings.TrimSpace(lx.src[begin+1:end]))
			return t
		case r == '"':
			if t, ok := lx.text(); ok {
				return t
			}
		case isDigit(r) || r == '-' && isDigit(lx.peekAt(lx.pos+1)):
			lx.pos++
			for isDigit(lx.peekAt(lx.pos)) {
				lx.pos++
			}
			return lx.token(Number, begin, lx.src[begin:lx.pos])
		case isIdentStart(r):
			lx.pos += size
			for {
				r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
				if lx.pos == len(lx.src) || !isIdentRune(r) {
					break
				}
				lx.pos += size
			}
			word := lx.src[begin:lx.pos]
			if kind, ok := keywords[word]; ok {
				return lx.token(kind, begin, word)
			}
			return lx.token(Identifier, begin, word)
		case r < utf8.RuneSelf && punctuations[byte(r)] != EOF:
			lx.pos++
			return lx.token(punctuations[byte(r)], begin, lx.src[begin:lx.pos])
		default:
			lx.pos += size
			lx.error(diag.Ranging{From: begin, To: lx.pos},
				fmt.Sprintf("unexpected character %q", r))
		}
	}
}

func (lx *Lexer) token(k Kind, begin int, value string) Token {
	return Token{Kind: k, Value: value, Ranging: diag.Ranging{From: begin, To: lx.pos}}
}

func (lx *Lexer) error(r diag.Ranging, msg string) {
	lx.errors = append(lx.errors, &LexError{
		Message: msg,
		Context: *diag.NewContext(lx.name, lx.src, r),
		Partial: r.To == len(lx.src),
	})
}

func (lx *Lexer) skipSpaces() {
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case ' ', '\t', '\r':
			lx.pos++
		default:
			return
		}
	}
}

// Consumes a run of line breaks, along with the whitespace between them.
func (lx *Lexer) newlines() Token {
	begin, end, count := lx.pos, lx.pos, 0
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\n':
			count++
			lx.pos++
			end = lx.pos
			continue
		case ' ', '\t', '\r':
			lx.pos++
			continue
		}
		break
	}
	// Whitespace after the last line break belongs to the next line.
	lx.pos = end
	t := lx.token(Newline, begin, lx.src[begin:end])
	t.Count = count
	return t
}

// Scans a double-quoted string starting at lx.pos. If the string is not
// terminated, it records an error, skips the opening quote and returns false.
func (lx *Lexer) text() (Token, bool) {
	begin := lx.pos
	for i := begin + 1; i < len(lx.src); i++ {
		switch lx.src[i] {
		case '\\':
			i++
		case '"':
			lx.pos = i + 1
			return lx.token(Text, begin, lx.src[begin+1:i]), true
		}
	}
	lx.pos = begin + 1
	lx.error(diag.Ranging{From: begin, To: lx.pos}, "unterminated string")
	return Token{}, false
}

func (lx *Lexer) peekAt(i int) rune {
	if i >= len(lx.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(lx.src[i:])
	return r
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentRune(r rune) bool { return isIdentStart(r) || isDigit(r) }
