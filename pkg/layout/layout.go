// Package layout assigns grid positions to the elements of a protocol.
//
// All positions and sizes are in grid units. The engine never iterates: every
// actor column is the maximum of a few independent spacing constraints,
// computed from the measured sizes of labels.
package layout

import (
	"fmt"

	"src.protosketch.dev/pkg/logutil"
	"src.protosketch.dev/pkg/options"
	"src.protosketch.dev/pkg/proto"
)

var logger = logutil.GetLogger("[layout] ")

// Measurer measures the rendered size of a text fragment in display pixels.
type Measurer interface {
	MeasureText(msg proto.Message) (w, h int, err error)
}

// Error is returned when a protocol violates the assumptions of the engine,
// such as a draw referring to an actor that is not declared.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "layout error: " + e.Message }

// Engine computes layouts.
type Engine struct {
	opts options.Options
	m    Measurer
}

// New creates an Engine.
func New(opts options.Options, m Measurer) *Engine {
	return &Engine{opts, m}
}

// Result is the layout of a protocol.
type Result struct {
	// In the same order as the actors of the protocol.
	Actors []ActorBox
	// In the same order as the draws of the protocol.
	Rows []Row
	// Y of the top of actor boxes.
	Top int
	// Height of the row of actor boxes: the maximum actor height.
	Header int
	// Y where lifelines end and end caps start.
	End int
	// Computed canvas size.
	Width, Height int
}

// ActorBox is the layout of an actor.
type ActorBox struct {
	GridX  int
	Center int
	Width  int
	Height int
}

// Row is the layout of a draw.
type Row struct {
	// Y where the row starts; this is where the cursor was, after applying
	// any gridy override.
	Top int
	// Y of the top of the self-action box or the arrow area.
	Y int
	// Size of the self-action box, or of the arrow area, whose width is the
	// label width plus one.
	Width  int
	Height int
}

// ActorSize returns the box size of an actor label of the given pixel size.
func (e *Engine) ActorSize(w, h int) (int, int) {
	return e.boxSize(w, h, e.opts.Actor.MinWidth)
}

// ActionSize returns the box size of a self-action label of the given pixel
// size.
func (e *Engine) ActionSize(w, h int) (int, int) {
	return e.boxSize(w, h, e.opts.Action.MinWidth)
}

// ArrowSize returns the area size of an arrow label of the given pixel size.
func (e *Engine) ArrowSize(w, h int) (int, int) {
	return w/e.opts.Protocol.GridSize + 1, e.opts.Message.LineHeight
}

// Box widths are even so that boxes center on a grid line.
func (e *Engine) boxSize(w, h, minWidth int) (int, int) {
	g := e.opts.Protocol.GridSize
	gw := w/g + e.opts.Pic.Margin
	if gw%2 != 0 {
		gw++
	}
	return max(gw, minWidth), h/g + e.opts.Pic.Margin
}

func (e *Engine) measure(msg proto.Message, size func(w, h int) (int, int)) (int, int, error) {
	w, h, err := e.m.MeasureText(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("measure %s: %w", msg.Quoted(), err)
	}
	gw, gh := size(w, h)
	return gw, gh, nil
}

// ActorLabel returns the label of the box of an actor.
func ActorLabel(a *proto.Actor) proto.Message {
	return proto.Message{Text: a.Name}
}

type pair struct{ left, right int }

// Precalculate computes the layout of p. Every draw must refer to actors of p;
// call (*proto.Protocol).Normalize first to ensure this. Precalculate does not
// modify p.
func (e *Engine) Precalculate(p *proto.Protocol) (*Result, error) {
	o := e.opts
	res := &Result{
		Actors: make([]ActorBox, len(p.Actors)),
		Rows:   make([]Row, len(p.Draws)),
		Top:    o.Protocol.Margin,
	}

	// Widest box in each column, and widest self-action per actor.
	widest := make([]int, len(p.Actors))
	widestAction := make([]int, len(p.Actors))
	for i, a := range p.Actors {
		w, h, err := e.measure(ActorLabel(a), e.ActorSize)
		if err != nil {
			return nil, err
		}
		res.Actors[i] = ActorBox{Width: w, Height: h}
		widest[i] = w
		res.Header = max(res.Header, h)
	}

	arrows := map[pair]int{}
	y := res.Top + res.Header
	for k, d := range p.Draws {
		src, dst := p.ActorIndex(d.Src), p.ActorIndex(d.Dst)
		if src < 0 || dst < 0 {
			return nil, &Error{fmt.Sprintf("draw %d refers to an undeclared actor", k)}
		}
		if d.GridY.Set && d.GridY.N > y {
			y = d.GridY.N
		}
		if d.IsAction() {
			w, h, err := e.measure(d.Message, e.ActionSize)
			if err != nil {
				return nil, err
			}
			widest[src] = max(widest[src], w)
			widestAction[src] = max(widestAction[src], w)
			res.Rows[k] = Row{Top: y, Y: y + o.Action.YMargin, Width: w, Height: h}
			y += o.Action.YMargin + h
		} else {
			w, h, err := e.measure(d.Message, e.ArrowSize)
			if err != nil {
				return nil, err
			}
			key := pair{min(src, dst), max(src, dst)}
			arrows[key] = max(arrows[key], w)
			res.Rows[k] = Row{Top: y, Y: y, Width: w, Height: h}
			y += h
		}
	}
	res.End = y + o.Protocol.EndMargin
	res.Height = res.End + o.Protocol.EndHeight + o.Protocol.Margin

	for i, a := range p.Actors {
		box := &res.Actors[i]
		if i == 0 {
			box.Center = o.Protocol.Margin + widest[0]/2
		} else {
			prev := res.Actors[i-1]
			span := max(
				o.Actor.Margin+(prev.Width+box.Width)/2,
				max(widestAction[i-1], widestAction[i])/2+o.Action.XMargin,
				arrows[pair{i - 1, i}],
				o.Actor.MinSpan)
			box.Center = prev.Center + span
			// Arrows between actors that are not adjacent.
			for j := 0; j < i-1; j++ {
				if w, ok := arrows[pair{j, i}]; ok {
					box.Center = max(box.Center, res.Actors[j].Center+w)
				}
			}
		}
		if a.GridX.Set {
			box.Center = max(box.Center, a.GridX.N+box.Width/2)
		}
		box.GridX = box.Center - box.Width/2
	}
	if n := len(p.Actors); n > 0 {
		res.Width = res.Actors[n-1].Center + o.Protocol.Margin + widest[n-1]/2
	} else {
		res.Width = 2 * o.Protocol.Margin
	}

	logger.Printf("laid out %s: %d actors, %d draws, %dx%d", p.Name, len(p.Actors), len(p.Draws), res.Width, res.Height)
	return res, nil
}

// Preprocess prepares p for rendering: it normalizes the actors, computes the
// layout, resolves an auto canvas size to the computed one, and fixes the
// gridx of every actor to its computed value. It is idempotent.
func Preprocess(p *proto.Protocol, e *Engine) (*Result, error) {
	p.Normalize()
	res, err := e.Precalculate(p)
	if err != nil {
		return nil, err
	}
	if p.Width.IsAuto() {
		p.Width = proto.Fixed(res.Width)
	}
	if p.Height.IsAuto() {
		p.Height = proto.Fixed(res.Height)
	}
	for i, a := range p.Actors {
		a.GridX = proto.Fixed(res.Actors[i].GridX)
	}
	return res, nil
}
