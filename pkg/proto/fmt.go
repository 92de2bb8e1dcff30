package proto

import (
	"strings"
)

// Format returns the canonical source form of p. Every attribute that is set
// is written out, so parsing the result and formatting it again yields the
// same text.
//
// Free-standing comments are written at the position recorded in
// p.Comments; comments attached to a declaration are written directly above
// it (prefix) or after it on the same line (suffix).
func Format(p *Protocol) string {
	var sb strings.Builder
	sb.WriteString("protocol " + p.Name +
		"(width=" + p.Width.String() + ", height=" + p.Height.String() + ")\n\n")

	for _, pic := range p.Pictures {
		writeDecl(&sb, pic, formatPicture(pic))
	}
	if len(p.Pictures) > 0 {
		sb.WriteString("\n")
	}
	for _, a := range p.Actors {
		writeDecl(&sb, a, formatActor(a))
	}
	if len(p.Actors) > 0 {
		sb.WriteString("\n")
	}

	for i, d := range p.Draws {
		for _, c := range p.Comments[i] {
			sb.WriteString(formatComment(c) + "\n\n")
		}
		writeDecl(&sb, d, formatDraw(d))
		sb.WriteString("\n")
	}
	for i, c := range p.Comments[len(p.Draws)] {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(formatComment(c) + "\n")
	}
	return sb.String()
}

func writeDecl(sb *strings.Builder, d Commentable, text string) {
	a := d.Comments()
	if a.Prefix != nil {
		sb.WriteString(formatComment(a.Prefix) + "\n")
	}
	sb.WriteString(text)
	if a.Suffix != nil {
		sb.WriteString(" " + formatComment(a.Suffix))
	}
	sb.WriteString("\n")
}

func formatComment(c *Comment) string {
	lines := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		if line == "" {
			lines[i] = "#"
		} else {
			lines[i] = "# " + line
		}
	}
	return strings.Join(lines, "\n")
}

func formatActor(a *Actor) string {
	return "actor " + a.Name + " (gridx=" + a.GridX.String() + ")"
}

func formatPicture(pic *Picture) string {
	return "picture " + pic.Name +
		"(width=" + pic.Width.String() + ", height=" + pic.Height.String() + "): " +
		`"` + pic.File + `"`
}

func formatDraw(d *Draw) string {
	var sb strings.Builder
	sb.WriteString(d.Src)
	if !d.IsAction() {
		sb.WriteString(d.LArrow.String() + d.RArrow.String() + d.Dst)
	}
	sb.WriteString(" (" + drawParams(d).String() + "):")
	if strings.Contains(d.Message.Text, "\n") {
		// Multi-line messages start a line of their own, unindented.
		sb.WriteString("\n" + d.Message.Quoted())
	} else {
		sb.WriteString("\n    " + d.Message.Quoted())
	}
	return sb.String()
}

func drawParams(d *Draw) Params {
	ps := Params{{"gridy", NumberValue(d.GridY)}}
	if d.Width.Set {
		ps = append(ps, Param{"width", NumberValue(d.Width)})
	}
	ps = append(ps, Param{"height", NumberValue(Fixed(d.Height))})
	for _, s := range [...]struct{ key, value string }{
		{"line_style", d.LineStyle},
		{"arrow_style", d.ArrowStyle},
		{"arrowl_style", d.ArrowLStyle},
		{"arrowr_style", d.ArrowRStyle},
	} {
		if s.value != "" {
			ps = append(ps, Param{s.key, IdentValue(s.value)})
		}
	}
	return ps
}
