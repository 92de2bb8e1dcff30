package proto

// Decl is a declaration in a protocol document. It is implemented by *Actor,
// *Draw, *Picture and *Comment only.
type Decl interface {
	decl()
}

func (*Actor) decl()   {}
func (*Draw) decl()    {}
func (*Picture) decl() {}
func (*Comment) decl() {}

// Commentable is implemented by declarations that can carry attached comments.
type Commentable interface {
	Decl
	Comments() *Attached
}

// Attached holds the comments attached to a declaration. They are only used
// for formatting.
type Attached struct {
	// Comment on the line(s) directly above the declaration.
	Prefix *Comment
	// Comment on the same line as the end of the declaration.
	Suffix *Comment
}

// Comments returns the receiver, so that types embedding Attached implement
// Commentable.
func (a *Attached) Comments() *Attached { return a }

// Actor is a participant with a vertical lifeline.
type Actor struct {
	Attached
	Name string
	// Column of the left edge of the actor box, in grid units.
	GridX Coord
}

// NewActor creates an Actor. It accepts gridx.
func NewActor(name string, params Params) (*Actor, error) {
	a := &Actor{Name: name}
	err := applyParams("actor", params, map[string]paramSetter{
		"gridx": numberSetter(func(c Coord) { a.GridX = c }),
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Default heights of draws, in grid units.
const (
	DefaultActionHeight = 9
	DefaultArrowHeight  = 6
)

// Draw is one row of the diagram: a self-action when Src == Dst, an arrow
// otherwise.
type Draw struct {
	Attached
	Src, Dst string
	// Markers at the left and right end of the arrow glyph as written. They
	// are None for self-actions.
	LArrow, RArrow Marker
	Message        Message

	GridY  Coord
	Width  Coord
	Height int

	// Style overrides are stored and formatted but not rendered yet.
	LineStyle   string
	ArrowStyle  string
	ArrowLStyle string
	ArrowRStyle string
}

// NewDraw creates a Draw. It accepts gridy, width, height and the style
// parameters.
func NewDraw(src, dst string, larrow, rarrow Marker, msg Message, params Params) (*Draw, error) {
	d := &Draw{Src: src, Dst: dst, LArrow: larrow, RArrow: rarrow, Message: msg}
	height := Auto
	err := applyParams("draw", params, map[string]paramSetter{
		"gridy":        numberSetter(func(c Coord) { d.GridY = c }),
		"width":        numberSetter(func(c Coord) { d.Width = c }),
		"height":       numberSetter(func(c Coord) { height = c }),
		"line_style":   identSetter(func(s string) { d.LineStyle = s }),
		"arrow_style":  identSetter(func(s string) { d.ArrowStyle = s }),
		"arrowl_style": identSetter(func(s string) { d.ArrowLStyle = s }),
		"arrowr_style": identSetter(func(s string) { d.ArrowRStyle = s }),
	})
	if err != nil {
		return nil, err
	}
	switch {
	case height.Set:
		d.Height = height.N
	case d.IsAction():
		d.Height = DefaultActionHeight
	default:
		d.Height = DefaultArrowHeight
	}
	return d, nil
}

// NewAction creates a self-action Draw on the given actor.
func NewAction(actor string, msg Message, params Params) (*Draw, error) {
	return NewDraw(actor, actor, None, None, msg, params)
}

// IsAction reports whether the draw is a self-action.
func (d *Draw) IsAction() bool { return d.Src == d.Dst }

// Comment is a block of comment lines. Adjacent single-line comments are
// merged into one Comment.
type Comment struct {
	Lines []string
}

// NewComment creates a Comment with one line.
func NewComment(line string) *Comment {
	return &Comment{Lines: []string{line}}
}

// AddLine appends a line to the comment.
func (c *Comment) AddLine(line string) {
	c.Lines = append(c.Lines, line)
}
