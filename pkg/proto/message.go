package proto

import "strings"

// Message is the text payload of a draw, kept as written between the quotes
// with escape sequences intact.
type Message struct {
	Text string
}

// Quoted returns the message in source form, including the quotes.
func (m Message) Quoted() string {
	return `"` + m.Text + `"`
}

// Key returns the semantic identity of the message, used as the input of
// content hashes.
func (m Message) Key() string {
	return m.Quoted()
}

// Unescape returns the text with the escape sequences \\, \n and \" decoded.
// Other backslashes are kept as they are.
func (m Message) Unescape() string {
	return Unescape(m.Text)
}

// Unescape decodes the escape sequences \\, \n and \" in s.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case '"':
			sb.WriteByte('"')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i+1])
		}
		i++
	}
	return sb.String()
}
