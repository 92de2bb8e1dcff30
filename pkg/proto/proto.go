// Package proto defines the syntax tree of protocol documents, along with
// normalization and the canonical formatter.
//
// A protocol document declares actors (vertical lifelines), draws (a
// self-action on one actor or an arrow between two actors), pictures and
// comments:
//
//	protocol Handshake(width=auto, height=auto)
//
//	actor Client
//	actor Server
//
//	# The client speaks first.
//	Client->Server: "SYN"
//	Server: "allocate"
package proto

// Protocol is the root of a parsed document.
type Protocol struct {
	Name   string
	Width  Coord
	Height Coord

	Actors   []*Actor
	Draws    []*Draw
	Pictures []*Picture
	// Free-standing comment blocks, keyed by the number of draws that precede
	// them.
	Comments map[int][]*Comment
}

// NewProtocol creates a Protocol from its header parameters. It accepts width
// and height.
func NewProtocol(name string, params Params) (*Protocol, error) {
	p := &Protocol{Name: name, Comments: map[int][]*Comment{}}
	err := applyParams("protocol", params, map[string]paramSetter{
		"width":  numberSetter(func(c Coord) { p.Width = c }),
		"height": numberSetter(func(c Coord) { p.Height = c }),
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Add adds a declaration to the protocol, dispatching on its variant. A
// *Comment is recorded as a free-standing block after the draws added so far.
func (p *Protocol) Add(d Decl) {
	switch d := d.(type) {
	case *Actor:
		p.Actors = append(p.Actors, d)
	case *Draw:
		p.Draws = append(p.Draws, d)
	case *Picture:
		p.Pictures = append(p.Pictures, d)
	case *Comment:
		if p.Comments == nil {
			p.Comments = map[int][]*Comment{}
		}
		n := len(p.Draws)
		p.Comments[n] = append(p.Comments[n], d)
	default:
		panic("unknown declaration")
	}
}

// Actor returns the actor with the given name, or nil.
func (p *Protocol) Actor(name string) *Actor {
	if i := p.ActorIndex(name); i >= 0 {
		return p.Actors[i]
	}
	return nil
}

// ActorIndex returns the position of the actor with the given name in
// declaration order, or -1.
func (p *Protocol) ActorIndex(name string) int {
	for i, a := range p.Actors {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Normalize removes duplicate actors, keeping the first occurrence, and
// appends a default actor for every name that a draw references but no actor
// declares. It is idempotent.
func (p *Protocol) Normalize() {
	seen := make(map[string]bool, len(p.Actors))
	actors := make([]*Actor, 0, len(p.Actors))
	for _, a := range p.Actors {
		if !seen[a.Name] {
			seen[a.Name] = true
			actors = append(actors, a)
		}
	}
	for _, d := range p.Draws {
		for _, name := range [2]string{d.Src, d.Dst} {
			if !seen[name] {
				seen[name] = true
				actors = append(actors, &Actor{Name: name})
			}
		}
	}
	p.Actors = actors
}
