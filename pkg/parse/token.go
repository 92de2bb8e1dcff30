package parse

import (
	"fmt"

	"src.protosketch.dev/pkg/diag"
)

// Kind is the kind of a Token.
type Kind int

// Possible values of Kind.
const (
	EOF Kind = iota
	// A maximal run of line breaks.
	Newline
	Comment
	Identifier
	// A signed integer or auto.
	Number
	// A double-quoted string.
	Text

	ProtocolKeyword
	ActorKeyword
	PictureKeyword
	// One of gridx, gridy, width, height, line_style, arrow_style,
	// arrowl_style and arrowr_style.
	ParamKeyword

	Comma
	Colon
	Minus
	LAngle
	RAngle
	LParen
	RParen
	Equal
)

var kindNames = [...]string{
	EOF:             "end of input",
	Newline:         "newline",
	Comment:         "comment",
	Identifier:      "identifier",
	Number:          "number",
	Text:            "text",
	ProtocolKeyword: "'protocol'",
	ActorKeyword:    "'actor'",
	PictureKeyword:  "'picture'",
	ParamKeyword:    "parameter name",
	Comma:           "','",
	Colon:           "':'",
	Minus:           "'-'",
	LAngle:          "'<'",
	RAngle:          "'>'",
	LParen:          "'('",
	RParen:          "')'",
	Equal:           "'='",
}

func (k Kind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"protocol":     ProtocolKeyword,
	"actor":        ActorKeyword,
	"picture":      PictureKeyword,
	"auto":         Number,
	"gridx":        ParamKeyword,
	"gridy":        ParamKeyword,
	"width":        ParamKeyword,
	"height":       ParamKeyword,
	"line_style":   ParamKeyword,
	"arrow_style":  ParamKeyword,
	"arrowl_style": ParamKeyword,
	"arrowr_style": ParamKeyword,
}

var punctuations = map[byte]Kind{
	',': Comma,
	':': Colon,
	'-': Minus,
	'<': LAngle,
	'>': RAngle,
	'(': LParen,
	')': RParen,
	'=': Equal,
}

// Token is a lexical token.
type Token struct {
	Kind Kind
	// Source text of the token, except that for Comment it is the trimmed
	// text after the '#', and for Text it is the content between the quotes.
	Value string
	// Number of line breaks, for Newline.
	Count int
	diag.Ranging
}

func (t Token) String() string {
	switch t.Kind {
	case Identifier, Number, ParamKeyword:
		return fmt.Sprintf("%s %s", t.Kind, t.Value)
	case Text:
		return fmt.Sprintf("%s %q", t.Kind, t.Value)
	}
	return t.Kind.String()
}
