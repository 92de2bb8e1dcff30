package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Context is a range of text in a source document. It is used for errors that
// can be associated with a part of the source, like lex and syntax errors.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the caret line.
var (
	caretStart = "\033[1;32m"
	caretEnd   = "\033[m"
)

// Position returns the 1-based line and column of the start of the range.
// Columns count runes, not bytes.
func (c *Context) Position() (line, col int) {
	before := c.Source[:c.From]
	line = strings.Count(before, "\n") + 1
	col = utf8.RuneCountInString(lastLine(before)) + 1
	return line, col
}

// Describe returns "name:line:col", or a description of an invalid position.
func (c *Context) Describe() string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	line, col := c.Position()
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

// Show shows the position, the full source line containing the start of the
// range, and a line of carets under the culprit. Lines after the first are
// prefixed with indent.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	head := lastLine(c.Source[:c.From])
	rest := c.Source[c.From:]
	tail := firstLine(rest)
	culprit := firstLine(c.Source[c.From:c.To])

	var sb strings.Builder
	sb.WriteString(c.Describe())
	sb.WriteString(":\n")
	sb.WriteString(indent)
	sb.WriteString(head)
	sb.WriteString(tail)
	sb.WriteString("\n")
	sb.WriteString(indent)
	sb.WriteString(padding(head))
	sb.WriteString(caretStart)
	sb.WriteString(strings.Repeat("^", max(1, runewidth.StringWidth(culprit))))
	sb.WriteString(caretEnd)
	return sb.String()
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

// Returns whitespace that occupies the same number of columns as s, keeping
// tabs so that the result lines up under s in a terminal.
func padding(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
	}
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
